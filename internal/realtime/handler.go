package realtime

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Feaman/elven-keep-server/internal/middleware"
)

// Handler upgrades authenticated requests to websocket connections and
// registers them with the hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler returns a Handler accepting handshakes from allowedOrigins. An
// empty list accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string, log *zap.Logger) *Handler {
	return &Handler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, o := range allowed {
			if origin == o {
				return true
			}
		}
		return false
	}
}

// ServeHTTP handles GET /api/ws. The first frame tells the client its
// connection id.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == 0 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn, userID, h.log)
	if !h.hub.Register(c) {
		_ = conn.Close()
		return
	}

	hello, err := json.Marshal(Frame{Event: EventConnected, Data: map[string]string{"connectionId": c.ID}})
	if err == nil {
		c.Enqueue(hello)
	}
	h.log.Debug("websocket connected", zap.Int64("user_id", userID), zap.String("connection_id", c.ID))

	go c.writePump()
	go c.readPump(h.hub)
}
