// Package apperror defines the error taxonomy surfaced to HTTP clients.
// Every AppError carries a status code and a message that is safe to show;
// the underlying cause, if any, is kept for logging only.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds of application errors. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication error")
	ErrUpstream   = errors.New("upstream error")
)

// GenericMessage is sent for every error that is not an AppError.
const GenericMessage = "Server error"

// AppError is an error with a client-safe message and an HTTP status.
type AppError struct {
	Kind     error
	Code     int
	Message  string
	Internal error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is the kind of this error.
func (e *AppError) Is(target error) bool {
	return e.Kind == target
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidation creates a 400 error for missing or malformed client input.
func NewValidation(message string) *AppError {
	return &AppError{Kind: ErrValidation, Code: http.StatusBadRequest, Message: message}
}

// NewConflict creates a 409 error for a duplicate unique key.
func NewConflict(message string) *AppError {
	return &AppError{Kind: ErrConflict, Code: http.StatusConflict, Message: message}
}

// NewAuth creates a 401 error. Callers must keep the message uniform across
// "no such account" and "wrong password".
func NewAuth(message string, internal error) *AppError {
	return &AppError{Kind: ErrAuth, Code: http.StatusUnauthorized, Message: message, Internal: internal}
}

// NewUpstream creates a 500 error for a failed catalog call.
func NewUpstream(message string, internal error) *AppError {
	return &AppError{Kind: ErrUpstream, Code: http.StatusInternalServerError, Message: message, Internal: internal}
}

// SafeCode returns the HTTP status for err, 500 for anything that is not an AppError.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// SafeMessage returns the client-facing message for err.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return GenericMessage
}
