// Package apperror defines the domain error taxonomy shared by the service
// and handler layers. Services return these; handlers translate them into
// HTTP status codes and the response envelope.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check with errors.Is — AppError implements Unwrap, so the
// sentinels are reachable through any fmt.Errorf("...: %w", err) wrapping.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries a sentinel plus a human-readable message and, for
// validation failures, the offending field.
type AppError struct {
	Err     error  // sentinel category
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a resource identifier did not resolve. The resource
// and id are kept for server-side logs; handlers surface a generic message.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports a per-field validation failure. Validation is
// fail-fast: the first failing field's message is what reaches the caller.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. a taken username.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden reports that the caller lacks permission on the resource.
// Handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized reports missing or invalid credentials. Handlers map this
// to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
