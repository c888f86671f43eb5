// Package realtime pushes note changes to the live websocket connections of
// every collaborator on a note.
package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Hub is the registry of live connections keyed by user id and connection id.
// It is safe for concurrent use.
type Hub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[int64]map[string]*Client
	closed  bool
}

// NewHub returns an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{log: log, clients: make(map[int64]map[string]*Client)}
}

// Register adds c. It reports false once the hub has been closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[string]*Client)
	}
	h.clients[c.UserID][c.ID] = c
	return true
}

// Unregister removes c. Removing an unknown client is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	delete(conns, c.ID)
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
	}
}

// ClientsFor returns a snapshot of userID's connections except the one
// with id exclude.
func (h *Hub) ClientsFor(userID int64, exclude string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := h.clients[userID]
	out := make([]*Client, 0, len(conns))
	for id, c := range conns {
		if id != exclude {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many connections userID has.
func (h *Hub) Count(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Client
	for _, conns := range h.clients {
		for _, c := range conns {
			all = append(all, c)
		}
	}
	h.clients = make(map[int64]map[string]*Client)
	h.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	h.log.Info("realtime hub closed", zap.Int("connections", len(all)))
}
