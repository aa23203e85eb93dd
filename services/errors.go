// Package services holds the business rules for auth, catalog, cart, orders and
// user administration. Services depend only on the store contracts.
package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindServer            Kind = "SERVER"
)

// Error is the failure returned by every service operation. Message is shown to
// clients verbatim; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a KindValidation error.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// Unauthenticated returns a KindUnauthenticated error.
func Unauthenticated(msg string) *Error {
	return newError(KindUnauthenticated, "%s", msg)
}

// Forbidden returns a KindForbidden error.
func Forbidden(msg string) *Error {
	return newError(KindForbidden, "%s", msg)
}

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// Conflict returns a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// InvalidTransition returns a KindInvalidTransition error.
func InvalidTransition(format string, args ...any) *Error {
	return newError(KindInvalidTransition, format, args...)
}

// RateLimited returns a KindRateLimited error.
func RateLimited(msg string) *Error {
	return newError(KindRateLimited, "%s", msg)
}

// Internal wraps an unexpected failure. The cause is never shown to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindServer, Message: "Server error", Err: err}
}

// KindOf returns the Kind of err, or KindServer for foreign errors.
func KindOf(err error) Kind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return KindServer
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
