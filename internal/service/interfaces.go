// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/ponder/internal/model"
)

// RecordStore defines the contract for the persistence service that owns
// purchase records once they are written.
type RecordStore interface {
	// CreateRecord writes a new record. The store assigns ID and CreatedAt.
	CreateRecord(ctx context.Context, input model.PurchaseRecordInput) (model.PurchaseRecord, error)
	// ListRecords returns every record owned by ownerID, newest first.
	ListRecords(ctx context.Context, ownerID string) ([]model.PurchaseRecord, error)
}

// Storage is a RecordStore with a lifecycle, as returned by the configured backend.
type Storage interface {
	RecordStore
	Migrate(ctx context.Context) error
	Close() error
}

// Advisor turns a free-text prompt into free-text purchase advice.
type Advisor interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

// Session is the authenticated identity the workflow commits records for.
type Session struct {
	ExpiresAt   time.Time
	UserID      string
	Email       string
	AccessToken string
}

// Authenticated reports whether the session carries a usable identity.
func (s Session) Authenticated() bool {
	if s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// SessionProvider supplies the current session. Implementations return an
// error wrapping common.ErrAuth when nobody is signed in.
type SessionProvider interface {
	Current(ctx context.Context) (Session, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
