package service

import (
	"fmt"

	"github.com/Laisky/errors/v2"
)

// ErrorCode identifies a machine-stable upload error code.
type ErrorCode string

const (
	ErrCodeInvalidType     ErrorCode = "INVALID_TYPE"
	ErrCodeTooLarge        ErrorCode = "TOO_LARGE"
	ErrCodeEmpty           ErrorCode = "EMPTY_FILE"
	ErrCodeInvalidKey      ErrorCode = "INVALID_KEY"
	ErrCodeStorageDisabled ErrorCode = "STORAGE_DISABLED"
)

// Error is a typed upload error.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error returns the error message.
func (e *Error) Error() string {
	if e == nil {
		return "upload error: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("upload error: %s", e.Code)
	}
	return e.Message
}

// NewError constructs a typed upload error.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a typed upload error from the error chain.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsCode reports whether the error chain contains the given code.
func IsCode(err error, code ErrorCode) bool {
	if typed, ok := AsError(err); ok {
		return typed.Code == code
	}
	return false
}
