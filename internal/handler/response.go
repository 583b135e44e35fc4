package handler

// Response helpers. Every handler sends JSON through writeJSON and maps
// domain errors through writeError, so the wire format stays uniform:
// success bodies are endpoint-specific, error bodies are always
// {"message": ...} with an optional {"errors": {field: [messages]}} report
// for validation failures.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/credcloud/credcloud-server/internal/apperror"
)

// internalErrorMessage is the only thing a client sees for unexpected
// failures; the real error goes to the server log.
const internalErrorMessage = "Something Went Wrong, Please Try Again Later"

// messageResponse is the standard error/notice body.
type messageResponse struct {
	Message string `json:"message"`
}

// validationResponse carries the field-error report for 400 responses.
type validationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body; once Encode writes,
// they are on the wire.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status and body.
//
// Mapping:
//   - ErrValidation  → 400, with the field-error report when present
//   - ErrConflict    → 400 (duplicate username reads like a validation issue
//     to clients, matching the public API)
//   - ErrUnauthorized → 401
//   - ErrNotFound    → 404
//   - anything else  → 500 with a generic message; internal detail is never
//     sent to the client
//
// The service layer doesn't know about HTTP status codes; this function is
// the single place where the taxonomy meets the wire.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			if appErr.Fields != nil {
				writeJSON(w, http.StatusBadRequest, validationResponse{
					Message: appErr.Message,
					Errors:  appErr.Fields,
				})
				return
			}
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, messageResponse{Message: appErr.Message})
			return
		}
	}

	writeJSON(w, http.StatusInternalServerError, messageResponse{Message: internalErrorMessage})
}
