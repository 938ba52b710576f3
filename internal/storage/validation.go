package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidRecord = errors.New("invalid purchase record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecordInput rejects rows the table would not accept. Failures wrap
// common.ErrPersistence since the write is refused by the store.
func validateRecordInput(input model.PurchaseRecordInput) error {
	reject := func(reason string) error {
		return fmt.Errorf("%w: %w: %s", common.ErrPersistence, ErrInvalidRecord, reason)
	}

	if strings.TrimSpace(input.OwnerID) == "" {
		return reject("missing owner")
	}
	if strings.TrimSpace(input.Name) == "" {
		return reject("missing name")
	}
	if strings.TrimSpace(input.FinalName) == "" {
		return reject("missing final name")
	}
	if input.Amount.IsNegative() || input.FinalAmount.IsNegative() {
		return reject("amounts cannot be negative")
	}
	if !input.Emotion.Valid() {
		return reject(fmt.Sprintf("unknown emotion %q", input.Emotion))
	}
	return nil
}
