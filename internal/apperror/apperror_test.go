// Run with: go test ./internal/apperror/ -v
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// Table-driven: each case checks that errors.Is() identifies the sentinel,
// including through an fmt.Errorf("%w") wrapper added by an outer layer.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("todo", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "Title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "AlreadyExists wraps ErrConflict",
			err:       AlreadyExists("username", "alice"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthenticated",
			err:       Unauthenticated("authentication required"),
			target:    ErrUnauthenticated,
			wantMatch: true,
		},
		{
			name:      "wrapped NotFound still matches",
			err:       fmt.Errorf("service/todo: getting todo: %w", NotFound("todo", "x")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("todo", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "InvalidCredentials does NOT match ErrUnauthenticated",
			err:       InvalidCredentials(),
			target:    ErrUnauthenticated,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("todo", "abc123"),
			wantMessage: "todo not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("title", "Title is required"),
			wantMessage: "Title is required",
		},
		{
			name:        "AlreadyExists capitalises the field",
			err:         AlreadyExists("email", "alice@x.com"),
			wantMessage: "Email already exists: alice@x.com",
		},
		{
			name:        "InvalidCredentials is opaque",
			err:         InvalidCredentials(),
			wantMessage: "Invalid email or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("todo", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedFields(t *testing.T) {
	single := ValidationFailed("email", "Email should be valid")
	if single.Field != "email" {
		t.Errorf("Field = %q, want %q", single.Field, "email")
	}
	if single.Fields["email"] != "Email should be valid" {
		t.Errorf("Fields[email] = %q", single.Fields["email"])
	}

	multi := ValidationFailedFields(map[string]string{
		"username": "Username is required",
		"password": "Password is required",
	})
	if len(multi.Fields) != 2 {
		t.Errorf("len(Fields) = %d, want 2", len(multi.Fields))
	}
	if !errors.Is(multi, ErrValidation) {
		t.Error("ValidationFailedFields should wrap ErrValidation")
	}
}
