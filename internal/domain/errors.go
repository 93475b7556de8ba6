package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated means no live session backs the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the session lacks the required role.
	ErrForbidden = errors.New("access denied")
	// ErrConfirmationRequired guards destructive actions.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrInvalidTransition is returned for a status change that skips or reverses a stage.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrOutOfStock is returned when a quantity exceeds available stock.
	ErrOutOfStock = errors.New("not enough stock")
)

// ValidationError reports bad input caught before any upstream call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
