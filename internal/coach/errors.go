package coach

import (
	"errors"
	"fmt"
)

// ErrorCode classifies orchestrator failures so the CLI can pick the right
// user-facing message.
type ErrorCode string

const (
	// ErrAuthRequired indicates missing, expired, or unrefreshable credentials
	ErrAuthRequired ErrorCode = "AUTH_REQUIRED"
	// ErrNetwork indicates the activity API was unreachable or failing
	ErrNetwork ErrorCode = "NETWORK"
	// ErrRateLimited indicates the activity API throttled us
	ErrRateLimited ErrorCode = "RATE_LIMITED"
	// ErrNoData indicates there is nothing cached to work from
	ErrNoData ErrorCode = "NO_DATA"
)

// Error is a structured orchestrator error with code, message, and optional
// details.
type Error struct {
	Code    ErrorCode
	Message string
	Details string
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewAuthError creates an error for missing or unrefreshable credentials.
func NewAuthError(msg string, cause error) *Error {
	e := &Error{Code: ErrAuthRequired, Message: msg, cause: cause}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewNetworkError creates an error for an unreachable or failing API.
func NewNetworkError(cause error) *Error {
	return &Error{
		Code:    ErrNetwork,
		Message: "could not reach the activity API",
		Details: cause.Error(),
		cause:   cause,
	}
}

// NewRateLimitError creates an error for API throttling.
func NewRateLimitError(cause error) *Error {
	return &Error{
		Code:    ErrRateLimited,
		Message: "activity API rate limit exceeded, try again later",
		Details: cause.Error(),
		cause:   cause,
	}
}

// NewNoDataError creates an error for a run with nothing to work from.
func NewNoDataError(msg string) *Error {
	return &Error{Code: ErrNoData, Message: msg}
}

// CodeOf extracts the error code, or empty string for untyped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
