package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormKey is the FieldErrors key for errors that belong to no single field.
const FormKey = "_form"

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) FieldErrors {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
	return f
}

// HasErrors reports whether any field failed.
func (f FieldErrors) HasErrors() bool {
	return len(f) > 0
}

// Get returns the message for field, used by templates.
func (f FieldErrors) Get(field string) string {
	return f[field]
}

// HandleValidationError converts a binding/validation error into per-field messages.
func HandleValidationError(err error) FieldErrors {
	out := FieldErrors{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out.Add(fe.Field(), formatValidationError(fe))
		}
		return out
	}
	return out.Add(FormKey, "The submitted form could not be read.")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "min":
		return "Must be at least " + e.Param() + " characters."
	case "max":
		return "Must be at most " + e.Param() + " characters."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "Passwords do not match."
	case "number", "numeric":
		return "Enter a whole number."
	case "datetime":
		return "Use the format " + strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD").Replace(e.Param()) + "."
	default:
		return "Invalid value."
	}
}
