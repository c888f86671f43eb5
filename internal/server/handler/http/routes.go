package http

import (
	"net/http"

	"github.com/Feaman/elven-keep-server/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Users     *UserHandler
	Notes     *NoteHandler
	ListItems *ListItemHandler
	CoAuthors *CoAuthorHandler
	// Realtime upgrades GET /api/ws to a websocket.
	Realtime http.Handler
}

// NewRouter constructs and returns an HTTP handler that serves the note API
// under /api.
//
// Middleware chain (applied in order): RequestID, Recoverer, request
// logging, CORS and JSON content-type enforcement. Every route but register
// and login additionally requires a bearer token.
func NewRouter(
	h Handlers,
	verifier middleware.TokenVerifier,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/users", h.Users.Register)
		r.Post("/login", h.Users.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))

			r.Get("/config", h.Users.Config)
			r.Put("/users", h.Users.UpdateProfile)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", h.Notes.List)
				r.Post("/", h.Notes.Create)
				r.Get("/removed", h.Notes.Removed)
				r.Put("/order", h.Notes.SetOrder)

				r.Route("/{noteID}", func(r chi.Router) {
					r.Get("/", h.Notes.Get)
					r.Put("/", h.Notes.Update)
					r.Delete("/", h.Notes.Remove)
					r.Put("/restore", h.Notes.Restore)
					r.Put("/complete", h.Notes.Complete)
					r.Put("/order", h.Notes.SetListItemsOrder)
					r.Post("/co-authors", h.CoAuthors.Create)
				})
			})

			r.Route("/list-items", func(r chi.Router) {
				r.Post("/", h.ListItems.Create)
				r.Put("/{itemID}", h.ListItems.Update)
				r.Delete("/{itemID}", h.ListItems.Remove)
				r.Put("/{itemID}/restore", h.ListItems.Restore)
			})

			r.Delete("/co-authors/{coAuthorID}", h.CoAuthors.Delete)
			r.Method(http.MethodGet, "/ws", h.Realtime)
		})
	})

	return r
}
