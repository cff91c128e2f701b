// Package errors provides structured error types for hiernet.
//
// Every failure surfaced by the graph model, the codecs, the stores and the
// HTTP API carries a machine-readable [Code]. The codes fall into three
// categories that callers treat differently:
//
//   - Validation errors (INVALID_*, NODE_NOT_FOUND, DUPLICATE_ID, CANCELLED):
//     bad input to a public operation. Nothing was mutated; report to the user.
//   - Consistency errors (DANGLING_PATH, INCONSISTENT_MODEL): the bookkeeping
//     of a document is corrupt. These are programmer errors and abort the
//     enclosing operation.
//   - Environment errors (NETWORK_ERROR, TIMEOUT, DOCUMENT_NOT_FOUND, ...):
//     failures of the stores and transports around the model.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidEdge, "self-loop on %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidEdge) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to reach %s", addr)
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
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidEdge      Code = "INVALID_EDGE"
	ErrCodeInvalidSelection Code = "INVALID_SELECTION"
	ErrCodeInvalidColor     Code = "INVALID_COLOR"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidName      Code = "INVALID_NAME"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeNodeNotFound     Code = "NODE_NOT_FOUND"
	ErrCodeDuplicateID      Code = "DUPLICATE_ID"
	ErrCodeCancelled        Code = "CANCELLED"
	ErrCodeUnsupportedVer   Code = "UNSUPPORTED_VERSION"

	// Model consistency errors
	ErrCodeDanglingPath Code = "DANGLING_PATH"
	ErrCodeInconsistent Code = "INCONSISTENT_MODEL"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound  Code = "SESSION_NOT_FOUND"
	ErrCodeSessionExpired   Code = "SESSION_EXPIRED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// IsValidation reports whether err was caused by bad input to a public
// operation. Such errors never leave partial mutations behind.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidEdge, ErrCodeInvalidSelection,
		ErrCodeInvalidColor, ErrCodeInvalidFormat, ErrCodeInvalidName,
		ErrCodeInvalidPath, ErrCodeNodeNotFound, ErrCodeDuplicateID,
		ErrCodeCancelled, ErrCodeUnsupportedVer:
		return true
	}
	return false
}

// IsConsistency reports whether err signals corrupt model bookkeeping.
func IsConsistency(err error) bool {
	switch GetCode(err) {
	case ErrCodeDanglingPath, ErrCodeInconsistent:
		return true
	}
	return false
}
