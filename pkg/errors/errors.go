// Package errors provides structured error types for sankey.
//
// Every failure that can be traced back to the caller's input carries a
// machine-readable [Code], so the CLI, the HTTP server and library users can
// branch on the category without matching on message text.
//
// # Error Codes
//
//   - INVALID_SHAPE: the input is not a table, has fewer than two columns,
//     or has ragged rows
//   - INVALID_WEIGHT: a weight is negative, NaN, infinite or not a number
//   - EMPTY_INPUT: the table has no rows
//   - INVALID_*: other option or format validation failures
//   - FILE_NOT_FOUND, UNSUPPORTED, INTERNAL_ERROR
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidWeight, "row %d: negative weight %g", i, w)
//	if errors.Is(err, errors.ErrCodeInvalidWeight) {
//	    // Handle bad weight
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidShape, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Table validation errors, raised by the normalizer before any layout.
	ErrCodeInvalidShape  Code = "INVALID_SHAPE"
	ErrCodeInvalidWeight Code = "INVALID_WEIGHT"
	ErrCodeEmptyInput    Code = "EMPTY_INPUT"

	// Option and request validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidColormap Code = "INVALID_COLORMAP"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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
// It returns the code of the outermost *Error in the chain, so a Wrap
// around an inner coded error reports the wrapper's code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
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

// IsInputError reports whether err was caused by caller input rather than
// by the environment (filesystem, external tools, cache backends).
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidShape, ErrCodeInvalidWeight, ErrCodeEmptyInput,
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidColormap, ErrCodeInvalidPath:
		return true
	}
	return false
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
