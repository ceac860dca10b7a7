package apperrors

import (
	"errors"
	"fmt"
)

// AppError carries a typed failure code alongside a human-readable
// message and an optional wrapped cause.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func Validation(msg string) error {
	return New(CodeValidation, msg)
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func Forbidden(msg string) error {
	return New(CodeForbidden, msg)
}

func Unauthenticated(msg string) error {
	return New(CodeUnauthenticated, msg)
}

func Internal(msg string) error {
	return New(CodeInternal, msg)
}

// InvalidTransition reports an event that is not legal from the current
// state. Both are included so a stale client can diagnose itself.
func InvalidTransition(from, event string) error {
	return New(CodeInvalidTransition, fmt.Sprintf("event %q is not valid from state %q", event, from))
}

// CodeOf extracts the failure code from any error in the chain.
// Plain errors (driver faults, context deadlines) report CodeUnknown,
// which classifies as transient.
func CodeOf(err error) Code {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return CodeUnknown
}

// Retryable reports whether err is worth retrying at all.
func Retryable(err error) bool {
	return CodeOf(err).Transient()
}
