package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/todo-api/internal/apperror"
)

// validate is shared by every service. A *validator.Validate caches struct
// metadata and is safe for concurrent use, so one instance is enough.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("title", not "Title") so the
	// per-field error map matches what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages maps "<field>.<tag>" to the message shown to the client.
var fieldMessages = map[string]string{
	"username.required": "Username is required",
	"username.min":      "Username must be between 3 and 50 characters",
	"username.max":      "Username must be between 3 and 50 characters",
	"email.required":    "Email is required",
	"email.email":       "Email should be valid",
	"email.max":         "Email cannot exceed 80 characters",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters long",
	"password.max":      "Password cannot exceed 72 characters",
	"title.required":    "Title is required",
	"title.min":         "Title is required",
	"title.max":         "Title cannot exceed 100 characters",
}

// validateStruct runs the validator and converts its errors into an
// apperror validation failure carrying one message per field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("service: validating input: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}

	if len(fields) == 1 {
		for field, msg := range fields {
			return apperror.ValidationFailed(field, msg)
		}
	}
	return apperror.ValidationFailedFields(fields)
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
