package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no guest+RSVP row matched a read query.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidPhone means a lookup phone stripped to nothing.
	ErrInvalidPhone = errors.New("invalid phone number format")

	// ErrWriteFailed means a create/update did not return a persisted row.
	ErrWriteFailed = errors.New("write did not return a persisted row")
)

// ValidationError rejects a request before any storage access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
