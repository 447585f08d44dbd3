package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"userdesk/internal/report"
	"userdesk/internal/service"
	"userdesk/internal/validation"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

const (
	msgNotFound = "User not found"
	msgInternal = "Internal server error"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, details any) {
	writeJSON(w, status, ErrorResponse{Message: message, Details: details})
}

// respondError maps err onto a status code. Unexpected errors are reported
// and answered with a generic message.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var (
		viols    validation.Violations
		paramErr *paramError
		bodyErr  *bodyError
	)
	switch {
	case errors.As(err, &viols):
		writeError(w, http.StatusBadRequest, viols.Error(), []validation.Violation(viols))
	case errors.As(err, &paramErr):
		writeError(w, http.StatusBadRequest, paramErr.Error(), nil)
	case errors.As(err, &bodyErr):
		writeError(w, http.StatusBadRequest, bodyErr.Error(), nil)
	case service.IsNotFound(err):
		writeError(w, http.StatusNotFound, msgNotFound, nil)
	default:
		h.reporter.Capture(r.Context(), err, report.Tags{
			"handler":    "users",
			"operation":  operation,
			"request_id": middleware.GetReqID(r.Context()),
		})
		writeError(w, http.StatusInternalServerError, msgInternal, nil)
	}
}
