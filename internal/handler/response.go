// Package handler contains the HTTP handlers for the playground API.
//
// Handlers only translate between HTTP and the layers below: they decode the request,
// call an executor or a service, and encode the result. Domain errors become status
// codes in writeError.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/polyglot-playground/internal/apperror"
)

// ErrorResponse is the shape of every error response:
//
//	{"error": "not_found", "message": "File not found"}
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type
	Message string `json:"message"` // human-readable description
}

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sets headers and status before the body: once the encoder writes,
// header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status. Errors that are not
// *apperror.AppError become a generic 500 so internal details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads at most limit bytes of JSON into dst. Oversized bodies and
// malformed JSON both come back as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed("body", "request body is too large")
		}
		return apperror.ValidationFailed("body", "invalid JSON request body")
	}
	return nil
}
