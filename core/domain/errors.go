package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested auth flow does not exist.
	// Stores report a lookup miss as a nil result; this sentinel exists for
	// callers that prefer to surface the miss as an error.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError reports a field-level validation failure raised while
// constructing or updating an auth flow. It unwraps to ErrInvalidInput so
// callers can match the whole class with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
