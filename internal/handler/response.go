package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, r, logger, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//
//   {
//     "timestamp": "2025-01-01T12:00:00Z",
//     "status":    404,
//     "error":     "not_found",
//     "message":   "todo not found with id abc123",
//     "path":      "/api/todos/abc123"
//   }
//
// Validation failures add an "errors" object mapping each field to its message.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/todo-api/internal/apperror"
)

// maxBodyBytes caps request bodies. Todos and credentials are tiny.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Timestamp string            `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`   // machine-readable, e.g. "not_found"
	Message   string            `json:"message"` // human-readable
	Path      string            `json:"path"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set BEFORE the body is written; once Encode
// writes, later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to its HTTP status and machine-readable type.
//
// errors.Is walks the whole chain via Unwrap, so a service error such as
//
//	fmt.Errorf("service/todo: updating todo x: %w", apperror.NotFound(...))
//
// still matches ErrNotFound here.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError translates err into the standard error body.
//
// Anything that is not an *apperror.AppError becomes a generic 500: the raw
// message might contain SQL or file paths and is only logged.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, errorType := statusFor(err)

	resp := ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     errorType,
		Message:   "An internal error occurred",
		Path:      r.URL.Path,
	}

	var appErr *apperror.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		resp.Message = appErr.Message
		if errors.Is(err, apperror.ErrValidation) {
			resp.Errors = appErr.Fields
		}
	} else {
		resp.Status = http.StatusInternalServerError
		resp.Error = "internal_error"
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Warn("request rejected",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("reason", resp.Message),
		)
	}

	writeJSON(w, status, resp)
}

// Unauthenticated returns the deny handler for routes behind auth.RequireAuth.
func Unauthenticated(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, logger, apperror.Unauthenticated("Authentication required"))
	}
}

// decodeJSON reads a single JSON object from the request body into dst.
// Malformed or empty bodies are reported as validation failures.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.ValidationFailed("body", "Request body is too large")
		}
		return apperror.ValidationFailed("body", "Malformed JSON request body")
	}
	return nil
}
