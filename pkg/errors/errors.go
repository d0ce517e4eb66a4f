package errors

import (
	"errors"
	"fmt"
)

// Application error taxonomy. Validation and rate-limit errors are
// client-correctable and returned synchronously; upstream errors are masked
// with fallbacks on non-critical paths and surfaced on the booking-creation
// path. Nothing is retried automatically.

var (
	// ErrInvalidInput indicates a request failed schema validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates the caller exceeded its request window
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates an external service returned a non-2xx status
	// or a malformed payload
	ErrUpstream = errors.New("upstream error")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInternal indicates an unexpected server-side failure
	ErrInternal = errors.New("internal error")
)

// InvalidInputError creates an invalid input error naming the failing field
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// UpstreamError creates an upstream error with the service name and status
func UpstreamError(service string, status int) error {
	return fmt.Errorf("%s returned status %d: %w", service, status, ErrUpstream)
}

// UpstreamPayloadError creates an upstream error for an unparseable payload
func UpstreamPayloadError(service string, cause error) error {
	return fmt.Errorf("%s returned malformed payload: %v: %w", service, cause, ErrUpstream)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
