package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Feaman/elven-keep-server/internal/models"
	"github.com/Feaman/elven-keep-server/internal/realtime"
	"github.com/Feaman/elven-keep-server/internal/service"
)

// NoteService defines the note operations required by NoteHandler.
type NoteService interface {
	GetList(ctx context.Context, userID int64, byOrder bool) ([]models.Note, error)
	GetRemovedList(ctx context.Context, userID int64) ([]models.Note, error)
	GetNoteByID(ctx context.Context, noteID, userID int64, onlyUncompleted bool) (*models.Note, error)
	Create(ctx context.Context, in service.NoteInput, userID int64) (*models.Note, error)
	Update(ctx context.Context, noteID int64, in service.NoteInput, userID int64) (*models.Note, error)
	Remove(ctx context.Context, noteID, userID int64) (*models.Note, error)
	Restore(ctx context.Context, noteID, userID int64) (*models.Note, error)
	Complete(ctx context.Context, noteID, userID int64) (*models.Note, error)
	SetNotesOrder(ctx context.Context, orderedIDs []int64, userID int64) error
	SetListItemsOrder(ctx context.Context, noteID int64, orderedIDs []int64, userID int64) (*models.Note, error)
}

// Notifier fans successful mutations out to live connections.
type Notifier interface {
	NoteAdded(from realtime.Origin, note *models.Note)
	NoteChanged(from realtime.Origin, note *models.Note)
	NoteRemoved(from realtime.Origin, note *models.Note)
	ListItemsOrderSet(from realtime.Origin, note *models.Note)
	ListItemAdded(from realtime.Origin, item *models.ListItem)
	ListItemChanged(from realtime.Origin, item *models.ListItem)
	ListItemRemoved(from realtime.Origin, item *models.ListItem)
	CoAuthorAdded(from realtime.Origin, grant *models.NoteCoAuthor)
	CoAuthorRemoved(from realtime.Origin, grant *models.NoteCoAuthor)
}

// NoteHandler handles the /api/notes endpoints.
type NoteHandler struct {
	Notes    NoteService
	Notifier Notifier
	Log      *zap.Logger
}

// OrderRequest is the JSON payload of both reorder endpoints.
type OrderRequest struct {
	Order []int64 `json:"order"`
}

// List handles GET /api/notes. ?by_order=1 switches to manual order.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Notes.GetList(r.Context(), currentUser(r), queryFlag(r, "by_order"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// Removed handles GET /api/notes/removed.
func (h *NoteHandler) Removed(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Notes.GetRemovedList(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// Get handles GET /api/notes/{noteID}. ?only_uncompleted=1 hides completed
// list items.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	note, err := h.Notes.GetNoteByID(r.Context(), noteID, currentUser(r), queryFlag(r, "only_uncompleted"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Create handles POST /api/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	note, err := h.Notes.Create(r.Context(), in, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Notifier.NoteAdded(origin(r), note)
	writeJSON(w, http.StatusCreated, note)
}

// Update handles PUT /api/notes/{noteID}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in service.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	note, err := h.Notes.Update(r.Context(), noteID, in, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Notifier.NoteChanged(origin(r), note)
	writeJSON(w, http.StatusOK, note)
}

// Remove handles DELETE /api/notes/{noteID}.
func (h *NoteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Notes.Remove, h.Notifier.NoteRemoved)
}

// Restore handles PUT /api/notes/{noteID}/restore.
func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Notes.Restore, h.Notifier.NoteAdded)
}

// Complete handles PUT /api/notes/{noteID}/complete.
func (h *NoteHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Notes.Complete, h.Notifier.NoteChanged)
}

func (h *NoteHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, noteID, userID int64) (*models.Note, error),
	notify func(from realtime.Origin, note *models.Note),
) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	note, err := apply(r.Context(), noteID, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	notify(origin(r), note)
	writeJSON(w, http.StatusOK, note)
}

// SetOrder handles PUT /api/notes/order.
func (h *NoteHandler) SetOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Notes.SetNotesOrder(r.Context(), req.Order, currentUser(r)); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// SetListItemsOrder handles PUT /api/notes/{noteID}/order.
func (h *NoteHandler) SetListItemsOrder(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var req OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	note, err := h.Notes.SetListItemsOrder(r.Context(), noteID, req.Order, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Notifier.ListItemsOrderSet(origin(r), note)
	writeJSON(w, http.StatusOK, note)
}
