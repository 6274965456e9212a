package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable reason sent in the "error" field of a response
type ErrorCode string

const (
	// Announcement validation
	ErrCodeBadData   ErrorCode = "BADDATA"
	ErrCodeLocalIP   ErrorCode = "LOCALIP"
	ErrCodeDuplicate ErrorCode = "DUPLICATE"

	// Request decoding
	ErrCodeBadJSON  ErrorCode = "BADJSON"
	ErrCodeTooLarge ErrorCode = "TOOLARGE"

	// Listing access
	ErrCodeNotFound ErrorCode = "NOTFOUND"
	ErrCodeBadKey   ErrorCode = "BADKEY"

	// Rate limiting
	ErrCodeRateLimit ErrorCode = "RATELIMIT"
	ErrCodeThrottled ErrorCode = "THROTTLED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL"
	ErrCodeDatabase ErrorCode = "DATABASE"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"error"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func BadData(message string) *AppError {
	return New(ErrCodeBadData, message)
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeBadData, fmt.Sprintf("Missing property: %s", field))
}

func LocalIP() *AppError {
	return New(ErrCodeLocalIP, "Private host address")
}

func Duplicate() *AppError {
	return New(ErrCodeDuplicate, "Session already listed")
}

func BadJSON(message string) *AppError {
	return New(ErrCodeBadJSON, message)
}

func NotFound() *AppError {
	return New(ErrCodeNotFound, "Session ID not found")
}

func BadKey() *AppError {
	return New(ErrCodeBadKey, "Incorrect session key")
}

func RateLimitExceeded(count int) *AppError {
	return New(ErrCodeRateLimit, fmt.Sprintf("You have announced too many sessions (%d) too quickly!", count)).
		WithDetails(map[string]int{"count": count})
}

func TooLarge() *AppError {
	return New(ErrCodeTooLarge, "Request body too large")
}

func Throttled() *AppError {
	return New(ErrCodeThrottled, "Too many requests. Please try again later.")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
