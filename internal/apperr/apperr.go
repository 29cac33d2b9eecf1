// Package apperr defines the errors services hand back to the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for translation into an HTTP status.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindInvalidReferral    Kind = "invalid_referral"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindInsufficientFunds  Kind = "insufficient_funds"
	KindPackageUnavailable Kind = "package_unavailable"
	KindInternal           Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindInvalidReferral:    http.StatusBadRequest,
	KindConflict:           http.StatusConflict,
	KindNotFound:           http.StatusNotFound,
	KindInvalidCredentials: http.StatusBadRequest,
	KindUnauthorized:       http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindInsufficientFunds:  http.StatusBadRequest,
	KindPackageUnavailable: http.StatusBadRequest,
	KindInternal:           http.StatusInternalServerError,
}

// Error carries a client-facing message and, for internal faults, the cause.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the text safe to show to clients.
func (e *Error) Message() string {
	return e.message
}

// HTTPStatus returns the status code for the error's kind.
func (e *Error) HTTPStatus() int {
	if status, ok := statusByKind[e.kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func InvalidReferral() *Error {
	return New(KindInvalidReferral, "Invalid referral code")
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "Invalid credentials")
}

func Unauthorized() *Error {
	return New(KindUnauthorized, "Unauthorized")
}

func Forbidden() *Error {
	return New(KindForbidden, "Admin access required")
}

func InsufficientFunds() *Error {
	return New(KindInsufficientFunds, "Insufficient wallet balance")
}

func PackageUnavailable() *Error {
	return New(KindPackageUnavailable, "Package is not available")
}

// Internal wraps an unexpected failure. Only message reaches the client.
func Internal(message string, cause error) *Error {
	return &Error{kind: KindInternal, message: message, cause: cause}
}

// From returns err as an *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.kind == kind
}
