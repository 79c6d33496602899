package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("access forbidden")

	ErrSweetExists          = errors.New("sweet with this name already exists")
	ErrSweetNotFound        = errors.New("sweet not found")
	ErrNoSweets             = errors.New("no sweets found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrQuantityNotUpdatable = errors.New("quantity cannot be updated directly, use purchase or restock")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when request input fails field-level rules.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
