// Package http provides the chi HTTP transport of the note server: user
// registration and login, notes, list items and co-authors.
package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// UserService defines the user operations required by UserHandler.
type UserService interface {
	Register(ctx context.Context, firstName, secondName, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, secondName, email string) (*models.User, error)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// NoteLister returns the notes visible to a user.
type NoteLister interface {
	GetList(ctx context.Context, userID int64, byOrder bool) ([]models.Note, error)
}

// StatusLister returns the statuses lookup table.
type StatusLister interface {
	List(ctx context.Context) ([]models.Status, error)
}

// TypeLister returns the types lookup table.
type TypeLister interface {
	List(ctx context.Context) ([]models.Type, error)
}

// UserHandler handles registration, login, profile and the client bootstrap.
type UserHandler struct {
	Users    UserService
	Tokens   TokenIssuer
	Notes    NoteLister
	Statuses StatusLister
	Types    TypeLister
	Log      *zap.Logger
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	FirstName  string `json:"firstName"`
	SecondName string `json:"secondName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileRequest represents the JSON payload for a profile update.
type ProfileRequest struct {
	FirstName  string `json:"firstName"`
	SecondName string `json:"secondName"`
	Email      string `json:"email"`
}

// bootstrap is everything a client needs after signing in.
type bootstrap struct {
	Token    string          `json:"token,omitempty"`
	User     *models.User    `json:"user"`
	Notes    []models.Note   `json:"notes"`
	Types    []models.Type   `json:"types"`
	Statuses []models.Status `json:"statuses"`
}

// Register handles POST /api/users. It creates the user and answers with a
// token and the initial state.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	user, err := h.Users.Register(r.Context(), req.FirstName, req.SecondName, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.signIn(w, r, user, http.StatusCreated)
}

// Login handles POST /api/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	user, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.signIn(w, r, user, http.StatusOK)
}

// Config handles GET /api/config: the current user and initial state.
func (h *UserHandler) Config(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetByID(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	state, err := h.load(r.Context(), user)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// UpdateProfile handles PUT /api/users.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	user, err := h.Users.UpdateProfile(r.Context(), currentUser(r), req.FirstName, req.SecondName, req.Email)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) signIn(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	state, err := h.load(r.Context(), user)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	state.Token = token
	writeJSON(w, status, state)
}

// load fetches notes and lookup tables concurrently.
func (h *UserHandler) load(ctx context.Context, user *models.User) (*bootstrap, error) {
	state := &bootstrap{User: user}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		state.Notes, err = h.Notes.GetList(gctx, user.ID, true)
		return err
	})
	g.Go(func() (err error) {
		state.Types, err = h.Types.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		state.Statuses, err = h.Statuses.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}
