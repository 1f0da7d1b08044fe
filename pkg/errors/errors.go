package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for the failure categories of a bootstrap run
const (
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Invalid invocation argument
	ErrUsage ErrorCode = "USAGE"
	// Required external input missing or malformed
	ErrEnvironment ErrorCode = "ENVIRONMENT"
	// rebar.config or .app.src is not a well-formed term sequence
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	// A directory or path name outside the expected naming grammar
	ErrPattern ErrorCode = "PATTERN"
	// Listing, directory creation, symlink creation or file write failed
	ErrFilesystem ErrorCode = "FILESYSTEM"
)

// Process exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitBadCommand = 120
)

// BootstrapError represents a structured error with code and details
type BootstrapError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BootstrapError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BootstrapError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BootstrapError) Is(target error) bool {
	var targetErr *BootstrapError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BootstrapError with the given code and message
func New(code ErrorCode, message string) *BootstrapError {
	return &BootstrapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BootstrapError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BootstrapError {
	return &BootstrapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BootstrapError.
// Callers returning the result as an error must check err for nil first.
func Wrap(err error, code ErrorCode, message string) *BootstrapError {
	if err == nil {
		return nil
	}
	return &BootstrapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BootstrapError {
	if err == nil {
		return nil
	}
	return &BootstrapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BootstrapError) WithDetail(key string, value interface{}) *BootstrapError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var bootstrapErr *BootstrapError
	if errors.As(err, &bootstrapErr) {
		return bootstrapErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BootstrapError
func GetErrorCode(err error) ErrorCode {
	var bootstrapErr *BootstrapError
	if errors.As(err, &bootstrapErr) {
		return bootstrapErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BootstrapError
func GetErrorDetails(err error) map[string]interface{} {
	var bootstrapErr *BootstrapError
	if errors.As(err, &bootstrapErr) {
		return bootstrapErr.Details
	}
	return nil
}

// ExitCode maps an error to the process exit status.
// Usage errors get their own status so the packaging layer can tell a bad
// invocation apart from a failed bootstrap.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsErrorCode(err, ErrUsage):
		return ExitBadCommand
	default:
		return ExitFailure
	}
}
