package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()

	store, err := NewSQLiteStorage(MemoryPath)
	require.NoError(t, err)

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// fixedClock makes created_at deterministic, advancing a minute per call.
func fixedClock(store *SQLiteStorage, start time.Time) {
	next := start
	store.now = func() time.Time {
		current := next
		next = next.Add(time.Minute)
		return current
	}
}

func testInput(owner, name string, amount int64) model.PurchaseRecordInput {
	return model.PurchaseRecordInput{
		OwnerID:      owner,
		Name:         name,
		Amount:       decimal.NewFromInt(amount),
		Category:     "home",
		Emotion:      model.EmotionNeutral,
		FinalName:    name,
		FinalAmount:  decimal.NewFromInt(amount),
		DecisionNote: "Approved",
		Advice:       "Wait a week.",
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("file database", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "ponder.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Migrate(context.Background()))
		assert.Equal(t, dbPath, store.Path())
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestSQLiteStorage_MigrateIsIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	var indexCount int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_purchases_user_created'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestSQLiteStorage_FileSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ponder.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	created, err := store.CreateRecord(ctx, testInput("user-1", "Coffee Machine", 150))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	records, err := reopened.ListRecords(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
}
