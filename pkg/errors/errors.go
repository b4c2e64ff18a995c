package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad     ErrorCode = "CONFIG_LOAD"
	ErrConfigParse    ErrorCode = "CONFIG_PARSE"
	ErrConfigConflict ErrorCode = "CONFIG_CONFLICT"

	// Cache errors
	ErrCacheLoad     ErrorCode = "CACHE_LOAD"
	ErrCacheSave     ErrorCode = "CACHE_SAVE"
	ErrCacheMigrate  ErrorCode = "CACHE_MIGRATE"
	ErrCacheDeclined ErrorCode = "CACHE_MIGRATION_DECLINED"

	// Scan and hash errors
	ErrWalk     ErrorCode = "WALK"
	ErrHashRead ErrorCode = "HASH_READ"

	// Link errors
	ErrUnlink      ErrorCode = "UNLINK"
	ErrLinkCreate  ErrorCode = "LINK_CREATE"
	ErrLinkResolve ErrorCode = "LINK_RESOLVE"
)

// LinkdupError represents a structured error with code and details
type LinkdupError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *LinkdupError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LinkdupError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *LinkdupError) Is(target error) bool {
	var targetErr *LinkdupError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LinkdupError with the given code and message
func New(code ErrorCode, message string) *LinkdupError {
	return &LinkdupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LinkdupError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LinkdupError {
	return &LinkdupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a LinkdupError
func Wrap(err error, code ErrorCode, message string) *LinkdupError {
	if err == nil {
		return nil
	}
	return &LinkdupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LinkdupError {
	if err == nil {
		return nil
	}
	return &LinkdupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *LinkdupError) WithDetail(key string, value interface{}) *LinkdupError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var linkdupErr *LinkdupError
	if errors.As(err, &linkdupErr) {
		return linkdupErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a LinkdupError
func GetErrorCode(err error) ErrorCode {
	var linkdupErr *LinkdupError
	if errors.As(err, &linkdupErr) {
		return linkdupErr.Code
	}
	return ErrUnknown
}
