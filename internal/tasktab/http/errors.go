package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tasktab/internal/tasktab/service"
	"github.com/aussiebroadwan/tasktab/pkg/httpx"
	"github.com/aussiebroadwan/tasktab/pkg/slogx"
)

// errorResponse is the body of every non-2xx reply. Errors is only
// populated for validation failures.
type errorResponse struct {
	Message string               `json:"message"`
	Errors  []service.FieldError `json:"errors,omitempty"`
}

func writeError(w http.ResponseWriter, code int, message string) {
	httpx.WriteJSON(w, code, errorResponse{Message: message})
}

// writeServiceError translates service errors to HTTP responses. The
// bodies are deliberately sparse: a 404 never says whether the task
// exists for someone else, a 401 never says whether the email exists.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Validation failed",
			Errors:  verr.Fields,
		})
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeBadBody(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "Invalid request body")
}
