// Package domainerrors defines the coded error type shared across the
// service. Handlers map codes to HTTP statuses; services attach codes at the
// point where they know what went wrong.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and for callers that need
// to branch on failure kind without string matching.
type Code string

const (
	// CodeRecordValidation marks a patient record that violates its
	// construction invariants. Fatal to the single request, never to the
	// process.
	CodeRecordValidation Code = "record_validation"

	// CodeTrialConfiguration marks a trial definition that violates its own
	// invariants. Recovered locally: the trial is skipped, the run continues.
	CodeTrialConfiguration Code = "trial_configuration"

	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error. Message is safe to show to API clients
// except for internal errors, which handlers redact.
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

// New creates a coded error with a message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal when err carries
// none. Unclassified failures are treated as internal so nothing leaks.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
