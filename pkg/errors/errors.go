// Package errors provides structured error types for the tweetwall application.
//
// This package defines error codes and types that enable:
//   - Consistent handling of fatal configuration errors at startup
//   - Machine-readable codes for the control API and CLI exit messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three groups:
//   - Configuration: EMPTY_STEPS, UNKNOWN_STEP, DUPLICATE_PROVIDER,
//     MISSING_FACTORY, INVALID_CONFIG. These abort startup.
//   - Runtime: STEP_FAILED, STEP_PANIC, TIMEOUT, PROVIDER_NOT_VISIBLE.
//     These are logged and never stop the presentation loop.
//   - Content: NOT_FOUND, NETWORK_ERROR for feed and source adapters.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownStep, "no step type registered for %q", id)
//	if errors.Is(err, errors.ErrCodeUnknownStep) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors (fatal at startup)
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeEmptySteps        Code = "EMPTY_STEPS"
	ErrCodeUnknownStep       Code = "UNKNOWN_STEP"
	ErrCodeDuplicateProvider Code = "DUPLICATE_PROVIDER"
	ErrCodeMissingFactory    Code = "MISSING_FACTORY"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"

	// Runtime errors (recoverable, logged)
	ErrCodeStepFailed         Code = "STEP_FAILED"
	ErrCodeStepPanic          Code = "STEP_PANIC"
	ErrCodeTimeout            Code = "TIMEOUT"
	ErrCodeProviderNotVisible Code = "PROVIDER_NOT_VISIBLE"

	// Content errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err carries one of the configuration codes that
// must abort startup.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConfig, ErrCodeEmptySteps, ErrCodeUnknownStep,
		ErrCodeDuplicateProvider, ErrCodeMissingFactory:
		return true
	}
	return false
}
