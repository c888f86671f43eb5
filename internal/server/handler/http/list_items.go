package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Feaman/elven-keep-server/internal/models"
	"github.com/Feaman/elven-keep-server/internal/realtime"
	"github.com/Feaman/elven-keep-server/internal/service"
)

// ListItemService defines the list item operations required by ListItemHandler.
type ListItemService interface {
	Create(ctx context.Context, in service.ListItemInput, userID int64) (*models.ListItem, error)
	Update(ctx context.Context, itemID int64, in service.ListItemInput, userID int64) (*models.ListItem, error)
	Remove(ctx context.Context, itemID, userID int64) (*models.ListItem, error)
	Restore(ctx context.Context, itemID, userID int64) (*models.ListItem, error)
}

// ListItemHandler handles the /api/list-items endpoints.
type ListItemHandler struct {
	Items    ListItemService
	Notifier Notifier
	Log      *zap.Logger
}

// Create handles POST /api/list-items.
func (h *ListItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ListItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	item, err := h.Items.Create(r.Context(), in, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Notifier.ListItemAdded(origin(r), item)
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/list-items/{itemID}.
func (h *ListItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in service.ListItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	item, err := h.Items.Update(r.Context(), itemID, in, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Notifier.ListItemChanged(origin(r), item)
	writeJSON(w, http.StatusOK, item)
}

// Remove handles DELETE /api/list-items/{itemID}.
func (h *ListItemHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Items.Remove, h.Notifier.ListItemRemoved)
}

// Restore handles PUT /api/list-items/{itemID}/restore.
func (h *ListItemHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Items.Restore, h.Notifier.ListItemAdded)
}

func (h *ListItemHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, itemID, userID int64) (*models.ListItem, error),
	notify func(from realtime.Origin, item *models.ListItem),
) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	item, err := apply(r.Context(), itemID, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	notify(origin(r), item)
	writeJSON(w, http.StatusOK, item)
}
