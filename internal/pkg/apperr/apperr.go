// Package apperr defines the error taxonomy shared by the ledgers, the swap state machine
// and the HTTP boundary. Every business-rule failure is an *Error carrying a Kind that
// maps to one HTTP status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business-rule failure.
type Kind string

// Error kinds.
const (
	KindValidation         Kind = "validation"
	KindPermission         Kind = "permission"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindInsufficientPoints Kind = "insufficient_points"
)

// Error is a classified failure with a message safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrConflict) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrPermission         = &Error{Kind: KindPermission}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrInsufficientPoints = &Error{Kind: KindInsufficientPoints}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// Permission reports an actor that may not perform the operation.
func Permission(format string, args ...any) *Error {
	return newf(KindPermission, format, args...)
}

// NotFound reports a missing record.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict reports a record in the wrong state for the requested transition.
func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// InsufficientPoints reports a debit larger than the balance.
func InsufficientPoints(format string, args ...any) *Error {
	return newf(KindInsufficientPoints, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps err to the status code of its kind. Unclassified errors are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindInsufficientPoints:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
