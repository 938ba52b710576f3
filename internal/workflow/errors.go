package workflow

import (
	"errors"
	"fmt"

	"github.com/Veraticus/ponder/internal/common"
)

var (
	// ErrInFlight is returned when an async step is triggered while the same
	// step is still outstanding.
	ErrInFlight = errors.New("request already in progress")
	// ErrWrongState is returned when an operation is not allowed in the current state.
	ErrWrongState = errors.New("operation not allowed in current state")
	// ErrDiscarded is returned for operations on, or late results for, a discarded workflow.
	ErrDiscarded = errors.New("workflow discarded")
)

// FieldError is a rejected transition caused by a single field. It never
// aborts the workflow; the caller shows Reason next to Field and lets the
// user try again.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap classifies every field error as a validation error.
func (e *FieldError) Unwrap() error {
	return common.ErrValidation
}

func fieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// StepError reports a failed external call made by a workflow step. Kind is
// one of common.ErrTransport, common.ErrAuth or common.ErrPersistence.
type StepError struct {
	Kind error
	Err  error
	Step string
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Step, e.Kind)
	}
	if errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Step, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether repeating the same step may succeed.
func (e *StepError) Retryable() bool {
	return !errors.Is(e.Kind, common.ErrAuth)
}

// classifyStoreError maps a persistence failure to its error kind.
func classifyStoreError(err error) error {
	switch {
	case errors.Is(err, common.ErrAuth):
		return common.ErrAuth
	case errors.Is(err, common.ErrPersistence):
		return common.ErrPersistence
	default:
		return common.ErrTransport
	}
}
