package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/hackgods/clinic-local-store/internal/clinic"
	"github.com/hackgods/clinic-local-store/internal/preferences"
	"github.com/hackgods/clinic-local-store/internal/records"
	redisclient "github.com/hackgods/clinic-local-store/internal/redis"
	"github.com/hackgods/clinic-local-store/internal/session"
	"github.com/hackgods/clinic-local-store/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleError maps domain and storage errors to a status code. Notice
// carries the message the view shows for op.
func handleError(w http.ResponseWriter, op clinic.Op, err error) {
	resp := ErrorResponse{Details: err.Error(), Notice: clinic.Notice(op, err)}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, records.ErrValidation):
		status, resp.Error = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, records.ErrNotFound):
		status, resp.Error = http.StatusNotFound, "not_found"
	case errors.Is(err, preferences.ErrUnknownField),
		errors.Is(err, session.ErrUnknownField):
		status, resp.Error = http.StatusBadRequest, "unknown_field"
	case errors.Is(err, preferences.ErrInvalidValue),
		errors.Is(err, session.ErrInvalidValue):
		status, resp.Error = http.StatusBadRequest, "invalid_value"
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		status, resp.Error = http.StatusConflict, "busy"
		resp.Details = "another writer holds the lock, please retry shortly"
	case errors.Is(err, storage.ErrUnavailable):
		status, resp.Error = http.StatusServiceUnavailable, "storage_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, resp.Error = http.StatusGatewayTimeout, "timeout"
	default:
		resp.Error = "internal_error"
	}

	if status >= http.StatusInternalServerError {
		log.Printf("op=%s status=%d err=%v", op, status, err)
	}
	writeJSON(w, status, resp)
}
