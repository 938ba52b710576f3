// Package testutil provides shared fakes and fixtures for ponder tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/storage"
	"github.com/shopspring/decimal"
)

// TestDB is a migrated in-memory sqlite store.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically handles
// migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// Seed writes inputs in order and returns the stored records.
func (db *TestDB) Seed(inputs ...model.PurchaseRecordInput) []model.PurchaseRecord {
	db.t.Helper()

	records := make([]model.PurchaseRecord, 0, len(inputs))
	for _, in := range inputs {
		r, err := db.Storage.CreateRecord(context.Background(), in)
		if err != nil {
			db.t.Fatalf("failed to seed record %q: %v", in.Name, err)
		}
		records = append(records, r)
	}
	return records
}

// RecordInput returns a valid input owned by ownerID.
func RecordInput(ownerID, name, amount string) model.PurchaseRecordInput {
	a := decimal.RequireFromString(amount)
	return model.PurchaseRecordInput{
		OwnerID:      ownerID,
		Name:         name,
		Amount:       a,
		Emotion:      model.EmotionNeutral,
		FinalName:    name,
		FinalAmount:  a,
		DecisionNote: "Approved",
		Advice:       "Wait a week.",
	}
}
