package http

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// CoAuthorService defines the sharing operations required by CoAuthorHandler.
type CoAuthorService interface {
	Create(ctx context.Context, noteID int64, email string, actorID int64) (*models.NoteCoAuthor, error)
	Delete(ctx context.Context, grantID, actorID int64) (*models.NoteCoAuthor, error)
}

// CoAuthorHandler handles note sharing.
type CoAuthorHandler struct {
	CoAuthors CoAuthorService
	Notifier  Notifier
	Log       *zap.Logger
}

// ShareRequest is the JSON payload for sharing a note.
type ShareRequest struct {
	Email string `json:"email"`
}

// Create handles POST /api/notes/{noteID}/co-authors.
func (h *CoAuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var req ShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, r, h.Log, models.NewValidationError("email is required"))
		return
	}
	grant, err := h.CoAuthors.Create(r.Context(), noteID, req.Email, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Notifier.CoAuthorAdded(origin(r), grant)
	writeJSON(w, http.StatusCreated, grant)
}

// Delete handles DELETE /api/co-authors/{coAuthorID}.
func (h *CoAuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	grantID, err := pathID(r, "coAuthorID")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	grant, err := h.CoAuthors.Delete(r.Context(), grantID, currentUser(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Notifier.CoAuthorRemoved(origin(r), grant)
	writeJSON(w, http.StatusOK, grant)
}
