// Package apperr provides the structured error taxonomy shared by every
// layer of the backend. All errors carry a kind, a message, and optionally
// the offending field and a wrapped cause, so handlers can map them to a
// stable status/message pair at the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for boundary mapping.
type Kind string

const (
	// RecordNotFound means a requested row or composite key is absent.
	RecordNotFound Kind = "RECORD_NOT_FOUND"
	// RecordStillExists means a post-delete check found the row still
	// present, or a protected row was targeted for deletion.
	RecordStillExists Kind = "RECORD_STILL_EXISTS"
	// Unauthorized means the caller's permission bitmask had no overlap
	// with the required set. Distinct from an authentication failure.
	Unauthorized Kind = "UNAUTHORIZED"
	// InvalidCredentials covers a bad email/password pair and a token
	// whose signature or format is invalid. Both causes present
	// identically to the caller.
	InvalidCredentials Kind = "INVALID_CREDENTIALS"
	// AuthExpired means a structurally valid token is past its expiry.
	AuthExpired Kind = "AUTH_EXPIRED"
	// InvalidFormat means a datetime or other structured field failed
	// validation on construction.
	InvalidFormat Kind = "INVALID_FORMAT"
	// ConstraintViolation wraps a storage-level uniqueness or foreign-key
	// failure instead of leaking the raw driver error.
	ConstraintViolation Kind = "CONSTRAINT_VIOLATION"
)

// Error is the concrete error type for the taxonomy above.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending field for InvalidFormat errors.
	Field string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two errors by kind, so callers can test
// errors.Is(err, &Error{Kind: RecordNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// InvalidField builds an InvalidFormat error naming the offending field.
func InvalidField(field, format string, args ...any) *Error {
	return &Error{Kind: InvalidFormat, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of err, or "" if err is not from this taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// HTTPStatus maps an error to the status code reported at the boundary.
// Errors outside the taxonomy map to 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case RecordNotFound, RecordStillExists, InvalidFormat:
		return http.StatusBadRequest
	case Unauthorized, InvalidCredentials, AuthExpired:
		return http.StatusUnauthorized
	case ConstraintViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
