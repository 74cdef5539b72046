package store

import (
	"errors"
	"fmt"
)

// StoreError represents a domain error from hierarchical store operations.
//
// These are business-logic errors (path not found, path already exists,
// unexpected backend status) as opposed to infrastructure errors, which are
// reported with code ErrTransport and the underlying error wrapped.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the store path related to the error (if applicable)
	Path string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = msg + ": " + e.Path
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested path doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a path with the name already exists
	ErrAlreadyExists

	// ErrAccessDenied indicates the store rejected the operation for
	// authorization reasons
	ErrAccessDenied

	// ErrInvalidArgument indicates invalid parameters were provided
	// (empty path, malformed ACL entry, reserved metadata key)
	ErrInvalidArgument

	// ErrUnexpectedStatus indicates the call succeeded at the transport
	// level but the backend returned a status outside the expected
	// success set (e.g. not 201 on create)
	ErrUnexpectedStatus

	// ErrTransport indicates the backend was unreachable or the request
	// failed below the application level
	ErrTransport
)

// NewError builds a StoreError without an underlying cause.
func NewError(code ErrorCode, path, format string, args ...any) *StoreError {
	return &StoreError{Code: code, Message: fmt.Sprintf(format, args...), Path: path}
}

// WrapError builds a StoreError around an underlying cause.
func WrapError(code ErrorCode, path string, err error, message string) *StoreError {
	return &StoreError{Code: code, Message: message, Path: path, Err: err}
}

// IsCode reports whether err is a *StoreError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == code
}

// IsRetriable reports whether err represents a transient condition worth
// retrying. Only transport failures and unexpected backend statuses qualify;
// business-logic errors never do.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	var se *StoreError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == ErrTransport || se.Code == ErrUnexpectedStatus
}
