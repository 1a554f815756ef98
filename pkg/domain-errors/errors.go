// Package domainerrors provides coded errors for the service layer. Stores
// return sentinel errors; services translate them into coded errors that
// handlers can map onto a uniform response payload.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for the transport layer.
type Code string

const (
	CodeBadRequest  Code = "bad_request"
	CodeNotFound    Code = "not_found"
	CodeConflict    Code = "conflict"
	CodeInternal    Code = "internal"
	CodeUnavailable Code = "unavailable"
)

// Error carries a code plus a user-facing message. The message is safe to
// return to clients verbatim; internal detail belongs in the wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a user-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error that preserves the underlying cause for logs.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Message returns the user-facing message for err. Non-domain errors get a
// generic message so internal detail never leaks to clients.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
