// Package apperror defines the domain error taxonomy shared by every layer.
//
// Services and repositories return *AppError values wrapping one of the
// sentinel errors below. The HTTP layer maps the sentinel to a status code
// with errors.Is, and uses the Message (and Fields, for validation) for the
// response body. Anything that is not an *AppError is treated as internal.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

type AppError struct {
	Err     error             // sentinel, used for errors.Is
	Message string            // human-readable error message
	Field   string            // optional: single field causing the error
	Fields  map[string]string // optional: per-field messages for validation failures
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound is also returned when the resource exists but belongs to another
// user, so callers cannot probe for other users' data.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  map[string]string{field: message},
	}
}

// ValidationFailedFields reports several invalid fields at once.
func ValidationFailedFields(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// AlreadyExists reports a uniqueness violation on a single field,
// e.g. AlreadyExists("username", "alice") → "Username already exists: alice".
func AlreadyExists(field, value string) *AppError {
	label := field
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", label, value),
		Field:   field,
	}
}

// InvalidCredentials carries one fixed message so a failed login never
// reveals whether the email or the password was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid email or password",
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}
