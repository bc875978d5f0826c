// Package apperr defines the error kinds shared by the repositories, the
// HTTP layer and the client. Callers classify with errors.Is against the
// sentinel kinds; Message returns the text safe to show to users.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
)

type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// NotFound reports a missing or foreign record as "<entity> not found".
func NotFound(entity string) *Error {
	return New(ErrNotFound, fmt.Sprintf("%s not found", entity))
}

func Validation(format string, args ...interface{}) *Error {
	return New(ErrValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...interface{}) *Error {
	return New(ErrConflict, fmt.Sprintf(format, args...))
}

func Unauthorized(msg string) *Error {
	return New(ErrUnauthorized, msg)
}

// Message returns the user-facing text of the first *Error in err's chain,
// or fallback when there is none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// Status maps an error kind to an HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus is the inverse of Status, used by the remote client to turn a
// response back into a typed error.
func FromStatus(status int, msg string) *Error {
	switch status {
	case http.StatusBadRequest:
		return New(ErrValidation, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return New(ErrUnauthorized, msg)
	case http.StatusNotFound:
		return New(ErrNotFound, msg)
	case http.StatusConflict:
		return New(ErrConflict, msg)
	case http.StatusTooManyRequests:
		return New(ErrRateLimited, msg)
	default:
		return nil
	}
}
