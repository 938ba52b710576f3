// Package history reads back committed purchase decisions for the signed-in
// user and renders them as a table, a JSON report or an XLSX workbook.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/service"
)

// Service lists and imports records for the current session owner.
type Service struct {
	store    service.RecordStore
	sessions service.SessionProvider
	logger   *slog.Logger
}

// NewService creates a history service.
func NewService(store service.RecordStore, sessions service.SessionProvider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, sessions: sessions, logger: logger}
}

// Owner returns the signed-in user's id.
func (s *Service) Owner(ctx context.Context) (string, error) {
	session, err := s.sessions.Current(ctx)
	if err != nil {
		return "", err
	}
	return session.UserID, nil
}

// List returns the signed-in user's records, newest first.
func (s *Service) List(ctx context.Context) ([]model.PurchaseRecord, error) {
	owner, err := s.Owner(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	s.logger.Debug("listed purchase records", "owner", owner, "count", len(records))
	return records, nil
}
