// Package errors provides structured error types for pipoke.
//
// Every component returns errors carrying a machine-readable [Code] so the
// command surface and library callers can branch on the failure kind:
//
//   - DATA_UNAVAILABLE: a local snapshot is missing or corrupt
//   - NETWORK_ERROR: a remote call failed in transport or returned non-2xx
//   - PARSE_ERROR: a remote response did not have the expected shape
//   - PACKAGE_NOT_FOUND: the index reports that a package does not exist
//   - INVALID_PATTERN: a caller-supplied regular expression did not compile
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown condition: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
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
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidPattern Code = "INVALID_PATTERN"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Local data errors
	ErrCodeDataUnavailable Code = "DATA_UNAVAILABLE"

	// Remote index errors
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeNetwork         Code = "NETWORK_ERROR"
	ErrCodeParse           Code = "PARSE_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for an *Error with a matching code,
// so a PARSE_ERROR wrapped inside a DATA_UNAVAILABLE matches both.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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
