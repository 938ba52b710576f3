package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial purchases schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS purchases (
				id TEXT PRIMARY KEY,
				created_at TEXT NOT NULL,
				user_id TEXT NOT NULL CHECK (user_id <> ''),
				name TEXT NOT NULL CHECK (name <> ''),
				amount TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				emotion TEXT NOT NULL CHECK (emotion IN ('positive', 'neutral', 'negative')),
				final_name TEXT NOT NULL,
				final_amount TEXT NOT NULL
			)`)
			if err != nil {
				return fmt.Errorf("failed to create purchases table: %w", err)
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Keep the decision note and advice with each record",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE purchases ADD COLUMN decision_note TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE purchases ADD COLUMN advice TEXT NOT NULL DEFAULT ''`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index purchases by owner and creation time",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_purchases_user_created ON purchases(user_id, created_at DESC)`); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Rewrite created_at in a fixed-width layout",
		Up:          normalizeCreatedAt,
	},
}

func normalizeCreatedAt(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT id, created_at FROM purchases`)
	if err != nil {
		return fmt.Errorf("failed to read timestamps: %w", err)
	}
	updates := make(map[string]string)
	for rows.Next() {
		var id, createdAt string
		if err := rows.Scan(&id, &createdAt); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan timestamp: %w", err)
		}
		t, err := parseTimestamp(createdAt)
		if err != nil {
			_ = rows.Close()
			return fmt.Errorf("record %s has invalid created_at: %w", id, err)
		}
		if formatted := formatTimestamp(t); formatted != createdAt {
			updates[id] = formatted
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read timestamps: %w", err)
	}

	for id, createdAt := range updates {
		if _, err := tx.Exec(`UPDATE purchases SET created_at = ? WHERE id = ?`, createdAt, id); err != nil {
			return fmt.Errorf("failed to rewrite created_at for %s: %w", id, err)
		}
	}
	return nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}
