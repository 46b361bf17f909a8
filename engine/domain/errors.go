package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for request validation failures.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingField   = errors.New("missing field")
	ErrInvalidURL     = errors.New("invalid url")
	ErrTooLong        = errors.New("value too long")
	ErrOutOfRange     = errors.New("value out of range")
)

// ValidationError wraps a sentinel with context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
