// Package postgres stores purchase records in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Config holds pool settings.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DefaultConfig returns pool settings suited to a single CLI user.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxConns:        4,
		MinConns:        0,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
	}
}

// Store implements service.Storage on PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ service.Storage = (*Store)(nil)

// PoolConfig parses cfg into a pgxpool configuration without connecting.
func PoolConfig(cfg Config) (*pgxpool.Config, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%w: store.postgres_dsn is empty", common.ErrMissingConfig)
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid postgres DSN: %w", common.ErrInvalidConfig, err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "ponder"
	return pc, nil
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to postgres: %w", common.ErrTransport, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping postgres: %w", common.ErrTransport, err)
	}

	logger.Info("connected to postgres", "host", pc.ConnConfig.Host, "database", pc.ConnConfig.Database)
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the purchases table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS purchases (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			user_id TEXT NOT NULL CHECK (user_id <> ''),
			name TEXT NOT NULL CHECK (name <> ''),
			amount NUMERIC(12, 2) NOT NULL CHECK (amount >= 0),
			category TEXT NOT NULL DEFAULT '',
			emotion TEXT NOT NULL CHECK (emotion IN ('positive', 'neutral', 'negative')),
			final_name TEXT NOT NULL,
			final_amount NUMERIC(12, 2) NOT NULL CHECK (final_amount >= 0),
			decision_note TEXT NOT NULL DEFAULT '',
			advice TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_user_created ON purchases (user_id, created_at DESC)`,
	}
	for _, query := range queries {
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return classifyError("migration failed", err)
		}
	}
	s.logger.Info("postgres schema ready")
	return nil
}

// CreateRecord inserts a record and returns it with the server-assigned creation time.
func (s *Store) CreateRecord(ctx context.Context, input model.PurchaseRecordInput) (model.PurchaseRecord, error) {
	record := model.PurchaseRecord{
		ID:           uuid.NewString(),
		OwnerID:      input.OwnerID,
		Name:         input.Name,
		Amount:       input.Amount,
		Category:     input.Category,
		Emotion:      input.Emotion,
		FinalName:    input.FinalName,
		FinalAmount:  input.FinalAmount,
		DecisionNote: input.DecisionNote,
		Advice:       input.Advice,
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO purchases (id, user_id, name, amount, category, emotion,
			final_name, final_amount, decision_note, advice)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8::numeric, $9, $10)
		RETURNING created_at`,
		record.ID, record.OwnerID, record.Name, record.Amount.String(), record.Category,
		string(record.Emotion), record.FinalName, record.FinalAmount.String(),
		record.DecisionNote, record.Advice,
	)
	if err := row.Scan(&record.CreatedAt); err != nil {
		return model.PurchaseRecord{}, classifyError("failed to save purchase record", err)
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

// ListRecords returns ownerID's records, newest first.
func (s *Store) ListRecords(ctx context.Context, ownerID string) ([]model.PurchaseRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, created_at, user_id, name, amount::text, category, emotion,
			final_name, final_amount::text, decision_note, advice
		FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, classifyError("failed to query purchase records", err)
	}

	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, classifyError("failed to read purchase records", err)
	}
	return records, nil
}

func scanRecord(row pgx.CollectableRow) (model.PurchaseRecord, error) {
	var (
		record              model.PurchaseRecord
		amount, finalAmount string
		emotion             string
	)
	if err := row.Scan(&record.ID, &record.CreatedAt, &record.OwnerID, &record.Name, &amount,
		&record.Category, &emotion, &record.FinalName, &finalAmount,
		&record.DecisionNote, &record.Advice); err != nil {
		return model.PurchaseRecord{}, err
	}

	var err error
	if record.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.PurchaseRecord{}, fmt.Errorf("record %s has invalid amount: %w", record.ID, err)
	}
	if record.FinalAmount, err = decimal.NewFromString(finalAmount); err != nil {
		return model.PurchaseRecord{}, fmt.Errorf("record %s has invalid final amount: %w", record.ID, err)
	}
	record.Emotion = model.Emotion(emotion)
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

// classifyError maps pgx failures onto the persistence error kinds. SQLSTATE
// class 23 (integrity) and 22 (data) are refused writes; connection-level
// failures are transport errors.
func classifyError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%w: %w: %s: %w", common.ErrPersistence, common.ErrDuplicateEntry, msg, err)
		case strings.HasPrefix(pgErr.Code, "23"), strings.HasPrefix(pgErr.Code, "22"):
			return fmt.Errorf("%w: %s: %w", common.ErrPersistence, msg, err)
		case pgErr.Code == "28000", pgErr.Code == "28P01", pgErr.Code == "42501":
			return fmt.Errorf("%w: %s: %w", common.ErrAuth, msg, err)
		default:
			return fmt.Errorf("%w: %s: %w", common.ErrPersistence, msg, err)
		}
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %w", common.ErrTransport, msg, err)
}
