// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrElementNotFound = errors.New("element not found")
	ErrFilterNotFound  = errors.New("filter option not found")
	ErrNavigation      = errors.New("navigation failed")
	ErrMalformedRow    = errors.New("malformed row")
	ErrExport          = errors.New("export failed")
	ErrTimeout         = errors.New("timed out")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeFilterNotFound ErrorCode = "FILTER_NOT_FOUND"
	ErrCodeNavigation     ErrorCode = "NAVIGATION"
	ErrCodeMalformedRow   ErrorCode = "MALFORMED_ROW"
	ErrCodeExport         ErrorCode = "EXPORT"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeFilterNotFound: ErrFilterNotFound,
	ErrCodeNavigation:     ErrNavigation,
	ErrCodeMalformedRow:   ErrMalformedRow,
	ErrCodeExport:         ErrExport,
	ErrCodeTimeout:        ErrTimeout,
}

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retry      bool
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is matches another EngineError by code, the sentinel for this code,
// or anything in the underlying chain.
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	if s, ok := codeSentinels[e.Code]; ok && s == target {
		return true
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Retry:      false,
		Details:    make(map[string]interface{}),
	}
}

// WithRetry marks the error as retryable
func (e *EngineError) WithRetry() *EngineError {
	e.Retry = true
	return e
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// Retryable reports whether the error chain contains an EngineError marked for retry
func Retryable(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Retry
	}
	return false
}

func navigationError(message string, err error) *EngineError {
	return NewEngineError(ErrCodeNavigation, message, err)
}

// Temporary reports whether retrying the failed operation may succeed
func (e *EngineError) Temporary() bool {
	return e.Retry
}
