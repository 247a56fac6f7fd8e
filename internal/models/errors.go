package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by stores and services when a user-scoped
	// resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers duplicate keys and stale optimistic writes.
	ErrConflict = errors.New("conflict")
)

// ValidationError is a user-facing input failure. Nothing is persisted when
// one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

type notFoundError struct {
	message string
}

func (e *notFoundError) Error() string { return e.message }
func (e *notFoundError) Unwrap() error { return ErrNotFound }

// NotFound returns an error that matches ErrNotFound and reads as message,
// e.g. NotFound("Route plan not found").
func NotFound(message string) error {
	return &notFoundError{message: message}
}

type conflictError struct {
	message string
}

func (e *conflictError) Error() string { return e.message }
func (e *conflictError) Unwrap() error { return ErrConflict }

// Conflict returns an error that matches ErrConflict and reads as message
func Conflict(message string) error {
	return &conflictError{message: message}
}

// PublicMessage returns the client-facing text of a NotFound or Conflict
// error anywhere in err's chain, or fallback.
func PublicMessage(err error, fallback string) string {
	var nf *notFoundError
	if errors.As(err, &nf) {
		return nf.message
	}
	var ce *conflictError
	if errors.As(err, &ce) {
		return ce.message
	}
	return fallback
}
