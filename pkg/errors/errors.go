package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures of the fetch and persistence paths
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeClient      ErrorType = "client"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeStorage     ErrorType = "storage"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a typed API or pipeline error
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, code int, message string) *Error {
	return &Error{Type: errorType, Message: message, Code: code}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableErr checks if an error should be retried. Untyped errors are
// treated as non-retryable; the fetch path always produces typed errors.
func IsRetryableErr(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return IsRetryable(apiErr.Type)
	}
	return false
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown for untyped errors
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch {
	case statusCode == 0: // Network error
		return true
	case statusCode == 429: // Too Many Requests
		return true
	case statusCode >= 500:
		return true
	default:
		return false
	}
}
