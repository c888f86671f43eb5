package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Feaman/elven-keep-server/internal/middleware"
	"github.com/Feaman/elven-keep-server/internal/models"
	"github.com/Feaman/elven-keep-server/internal/realtime"
	"github.com/Feaman/elven-keep-server/internal/service"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// writeError maps service errors to status codes. Store failures are logged
// and answered without detail.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "wrong email or password", http.StatusUnauthorized)
	case errors.Is(err, models.ErrValidationFailed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrPermissionDenied):
		http.Error(w, "permission denied", http.StatusForbidden)
	default:
		if log != nil {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return models.NewValidationError("invalid request body")
	}
	return nil
}

// pathID parses the named chi URL parameter as a positive id.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// queryFlag reports whether the query parameter is set to a true value.
func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func currentUser(r *http.Request) int64 {
	return middleware.GetUserIDFromContext(r.Context())
}

func origin(r *http.Request) realtime.Origin {
	return realtime.Origin{UserID: currentUser(r), ConnectionID: middleware.ConnectionID(r)}
}
