// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrUnknownSender indicates the sender's phone number has no student record.
	ErrUnknownSender = errors.New("unknown sender")

	// ErrClassifierUnavailable indicates the text classification service failed
	// or was unreachable. Dispatch degrades to the unrecognized intent.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrMalformedEvent indicates a webhook payload with an unexpected shape.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// TransportError represents outbound Graph API failures with context.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport error (endpoint=%s, status=%d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error (endpoint=%s): %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new transport error.
func NewTransportError(endpoint string, statusCode int, err error) *TransportError {
	return &TransportError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Err:        err,
	}
}
