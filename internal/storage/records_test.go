package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_CreateRecord(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	fixedClock(store, start)

	input := testInput("user-1", "Coffee Machine", 150)
	input.Amount = decimal.RequireFromString("149.99")
	input.FinalName = "Espresso Machine"
	input.FinalAmount = decimal.RequireFromString("120.50")
	input.Emotion = model.EmotionNegative

	record, err := store.CreateRecord(ctx, input)
	require.NoError(t, err)

	_, err = uuid.Parse(record.ID)
	require.NoError(t, err)
	assert.Equal(t, start, record.CreatedAt)
	assert.Equal(t, input, record.Input())

	records, err := store.ListRecords(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, record.ID, got.ID)
	assert.True(t, start.Equal(got.CreatedAt))
	assert.True(t, input.Amount.Equal(got.Amount))
	assert.True(t, input.FinalAmount.Equal(got.FinalAmount))
	assert.Equal(t, "Espresso Machine", got.FinalName)
	assert.Equal(t, model.EmotionNegative, got.Emotion)
	assert.Equal(t, "Approved", got.DecisionNote)
	assert.Equal(t, "Wait a week.", got.Advice)
}

func TestSQLiteStorage_ListRecordsByOwnerNewestFirst(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	fixedClock(store, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	for _, name := range []string{"Coffee", "Headphones", "Gaming PC"} {
		_, err := store.CreateRecord(ctx, testInput("user-1", name, 40))
		require.NoError(t, err)
	}
	_, err := store.CreateRecord(ctx, testInput("user-2", "Bike", 400))
	require.NoError(t, err)

	records, err := store.ListRecords(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Gaming PC", records[0].Name)
	assert.Equal(t, "Headphones", records[1].Name)
	assert.Equal(t, "Coffee", records[2].Name)

	others, err := store.ListRecords(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "Bike", others[0].Name)

	none, err := store.ListRecords(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = store.ListRecords(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSQLiteStorage_CreateRecordRejectsInvalidRows(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		mutate func(*model.PurchaseRecordInput)
		name   string
	}{
		{name: "missing owner", mutate: func(in *model.PurchaseRecordInput) { in.OwnerID = "" }},
		{name: "missing name", mutate: func(in *model.PurchaseRecordInput) { in.Name = " " }},
		{name: "missing final name", mutate: func(in *model.PurchaseRecordInput) { in.FinalName = "" }},
		{name: "negative amount", mutate: func(in *model.PurchaseRecordInput) { in.Amount = decimal.NewFromInt(-5) }},
		{name: "unknown emotion", mutate: func(in *model.PurchaseRecordInput) { in.Emotion = "ecstatic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testInput("user-1", "Coffee", 4)
			tt.mutate(&input)

			_, err := store.CreateRecord(ctx, input)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrPersistence)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}

	records, err := store.ListRecords(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStorage_ConstraintViolationIsPersistenceError(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	record, err := store.CreateRecord(ctx, testInput("user-1", "Coffee", 4))
	require.NoError(t, err)

	_, err = store.db.ExecContext(ctx, `INSERT INTO purchases (`+recordColumns+`)
		VALUES (?, ?, 'user-1', 'Coffee', '4', '', 'neutral', 'Coffee', '4', '', '')`,
		record.ID, formatTimestamp(time.Now()))
	classified := classifyError("insert", err)
	assert.ErrorIs(t, classified, common.ErrPersistence)
	assert.ErrorIs(t, classified, common.ErrDuplicateEntry)
}

func TestSQLiteStorage_ListRecordsOrdersWithinOneSecond(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		offsets []time.Duration
		want    []string
	}{
		{
			name:    "trailing zeros trimmed by RFC3339",
			offsets: []time.Duration{120 * time.Millisecond, 123 * time.Millisecond},
			want:    []string{"Second", "First"},
		},
		{
			name:    "whole second then fraction",
			offsets: []time.Duration{0, 500 * time.Millisecond},
			want:    []string{"Second", "First"},
		},
		{
			name:    "nanosecond apart",
			offsets: []time.Duration{time.Millisecond, time.Millisecond + time.Nanosecond},
			want:    []string{"Second", "First"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()
			ctx := context.Background()

			for i, name := range []string{"First", "Second"} {
				at := start.Add(tt.offsets[i])
				store.now = func() time.Time { return at }
				_, err := store.CreateRecord(ctx, testInput("user-1", name, 10))
				require.NoError(t, err)
			}

			records, err := store.ListRecords(ctx, "user-1")
			require.NoError(t, err)
			require.Len(t, records, len(tt.want))
			for i, name := range tt.want {
				assert.Equal(t, name, records[i].Name)
			}
			assert.True(t, records[0].CreatedAt.Equal(start.Add(tt.offsets[1])))
		})
	}
}

func TestNormalizeCreatedAt(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	legacy := time.Date(2024, 1, 1, 12, 0, 0, 120_000_000, time.UTC)
	_, err := store.db.ExecContext(ctx, `INSERT INTO purchases (`+recordColumns+`)
		VALUES ('legacy-1', ?, 'user-1', 'Coffee', '4', '', 'neutral', 'Coffee', '4', '', '')`,
		legacy.Format(time.RFC3339Nano))
	require.NoError(t, err)

	tx, err := store.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, normalizeCreatedAt(tx))
	require.NoError(t, tx.Commit())

	var stored string
	require.NoError(t, store.db.QueryRowContext(ctx,
		`SELECT created_at FROM purchases WHERE id = 'legacy-1'`).Scan(&stored))
	assert.Equal(t, "2024-01-01T12:00:00.120000000Z", stored)

	records, err := store.ListRecords(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].CreatedAt.Equal(legacy))
}

func TestClassifyError(t *testing.T) {
	assert.ErrorIs(t, classifyError("x", context.DeadlineExceeded), common.ErrTransport)
	assert.NotErrorIs(t, classifyError("x", context.Canceled), common.ErrPersistence)
	assert.ErrorIs(t, classifyError("x", assert.AnError), common.ErrPersistence)
}

func TestSQLiteStorage_CreateRecordCanceledContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.CreateRecord(ctx, testInput("user-1", "Coffee", 4))
	require.Error(t, err)
}
