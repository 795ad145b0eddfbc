package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// ErrorDetail is the payload of every error response:
// {"error":{"code":"...","message":"..."}}.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeServiceError maps a service error onto a status code by its sentinel.
// Anything unrecognised is logged and answered with a generic 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		writeError(w, http.StatusUnprocessableEntity, "invalid_range", unwrapMessage(err, domain.ErrInvalidRange))
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", unwrapMessage(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrNotConfigured):
		s.log.ErrorContext(r.Context(), "server not configured", "error", err)
		writeError(w, http.StatusInternalServerError, "not_configured", "server is not configured for this operation")
	case errors.Is(err, domain.ErrUpstream):
		s.log.ErrorContext(r.Context(), "upstream store failure", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "failed to reach the trip store")
	case errors.Is(err, context.DeadlineExceeded):
		s.log.WarnContext(r.Context(), "request timed out", "error", err)
		writeError(w, http.StatusGatewayTimeout, "timeout", "rendering took too long")
	default:
		s.log.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part after a sentinel in a
// wrapped error, e.g.
// "service.ExportService.Plan: validation error: name is required" → "name is required".
func unwrapMessage(err error, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
}
