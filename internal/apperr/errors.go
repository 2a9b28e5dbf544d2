// Package apperr defines the coded error taxonomy shared by services, stores and
// the HTTP layer.
//
// Services and stores return *Error values (usually package-level sentinels
// built with the constructors below). Handlers inspect the code:
//
//	var e *apperr.Error
//	if errors.As(err, &e) {
//	    status := e.HTTPStatus()
//	}
//
// errors.Is(err, apperr.ErrNotFound) matches every error carrying CodeNotFound,
// while errors.Is(err, book.ErrNotFound) only matches that specific sentinel.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code rendered in API responses.
type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodeCapacity    Code = "CAPACITY_EXCEEDED"
	CodeUnavailable Code = "STORE_UNAVAILABLE"
	CodeInternal    Code = "INTERNAL_ERROR"
)

// HTTPStatus maps a code to its HTTP status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeCapacity:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, a user-visible message and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error with the same code. A generic sentinel (ErrNotFound,
// ErrConflict, ...) matches any error with its code; any other target must also
// carry the same message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if e.Code != t.Code {
		return false
	}
	return isGeneric(t) || e.Message == t.Message
}

// HTTPStatus returns the HTTP status for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

var (
	ErrValidation  = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound    = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict    = &Error{Code: CodeConflict, Message: "conflict"}
	ErrCapacity    = &Error{Code: CodeCapacity, Message: "capacity exceeded"}
	ErrUnavailable = &Error{Code: CodeUnavailable, Message: "store unavailable"}
	ErrInternal    = &Error{Code: CodeInternal, Message: "internal error"}
)

func isGeneric(e *Error) bool {
	switch e {
	case ErrValidation, ErrNotFound, ErrConflict, ErrCapacity, ErrUnavailable, ErrInternal:
		return true
	}
	return false
}

// New creates an error with an arbitrary code.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with per-field messages.
func ValidationWithDetails(msg string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func Capacity(msg string) *Error {
	return &Error{Code: CodeCapacity, Message: msg}
}

// Unavailable wraps a transient store failure (network, timeout, exhausted retries).
func Unavailable(cause error) *Error {
	return ErrUnavailable.WithCause(cause)
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
