// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds surfaced by the decision workflow. Every failure of an external
// call is converted into exactly one of these before it reaches the UI.
var (
	// ErrValidation marks a missing or malformed field at a transition boundary.
	ErrValidation = errors.New("validation failed")
	// ErrTransport marks a failed external call (network, timeout, non-2xx).
	ErrTransport = errors.New("transport error")
	// ErrAuth marks a missing or rejected session.
	ErrAuth = errors.New("not authenticated")
	// ErrPersistence marks a write rejected by the persistence service.
	ErrPersistence = errors.New("persistence error")
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Kind returns the workflow error kind of err, or nil when err is not classified.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrAuth, ErrPersistence, ErrTransport} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
