// Package apperror defines the application's error taxonomy.
//
// Services return errors built from the sentinel values below; the HTTP layer
// maps each sentinel to a status code in exactly one place (handler/response.go).
// The Message on an AppError is the full user-facing text — internal detail
// stays in the wrapped Err and is only ever logged server-side.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel (and optionally a wrapped cause)
	Message string // Human-readable error message, safe for clients
	Field   string // Optional: field causing the error

	// Fields carries a per-field error report for schema validation
	// failures: field name → human-readable messages.
	Fields map[string][]string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// SchemaFailed wraps a full field-error report from the validation layer.
// The report is returned to the client verbatim alongside a fixed message.
func SchemaFailed(fields map[string][]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Validation error",
		Fields:  fields,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized returns an AppError for failed credential checks.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Wrap attaches context to err while preserving its sentinel for errors.Is.
func Wrap(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
