// Package domainerrors defines the code-bearing errors returned by services.
//
// Stores return sentinel facts (pkg/platform/sentinel); services translate those
// into *Error values carrying a Code the transport layer maps to a status.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeValidation   Code = "validation_error"
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeConflict     Code = "conflict"
	CodeDependency   Code = "dependency_error"
	CodeProvider     Code = "provider_error"
	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeTimeout      Code = "timeout"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal_error"
)

// Error is a domain error with a stable code and an operator-facing message.
type Error struct {
	Code    Code
	Message string
	// Reason is a machine-readable refinement of Code (e.g. "dpi_affiliate").
	Reason string
	// Fields maps input field names to per-field messages.
	Fields map[string]string
	// Partial marks a failure that left external state half-applied.
	Partial bool
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap builds an error with the given code and message that wraps err.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// WithReason sets the machine-readable reason and returns e.
func (e *Error) WithReason(reason string) *Error {
	e.Reason = reason
	return e
}

// WithField records a per-field message and returns e.
func (e *Error) WithField(field, msg string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
	return e
}

// MarkPartial flags the error as leaving external state half-applied.
func (e *Error) MarkPartial() *Error {
	e.Partial = true
	return e
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// CodeOf returns the code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// IsPartial reports whether err is a domain error flagged as partial.
func IsPartial(err error) bool {
	de, ok := As(err)
	return ok && de.Partial
}
