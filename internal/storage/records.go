package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// timestampLayout is fixed width so that created_at sorts as text in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp also accepts RFC3339 text written before schema version 4.
func parseTimestamp(text string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, text); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

const recordColumns = `id, created_at, user_id, name, amount, category, emotion,
	final_name, final_amount, decision_note, advice`

// CreateRecord inserts a purchase record, assigning its id and creation time.
func (s *SQLiteStorage) CreateRecord(ctx context.Context, input model.PurchaseRecordInput) (model.PurchaseRecord, error) {
	if err := validateContext(ctx); err != nil {
		return model.PurchaseRecord{}, err
	}
	if err := validateRecordInput(input); err != nil {
		return model.PurchaseRecord{}, err
	}

	record := model.PurchaseRecord{
		ID:           uuid.NewString(),
		CreatedAt:    s.now().UTC(),
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

	_, err := s.db.ExecContext(ctx, `INSERT INTO purchases (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		formatTimestamp(record.CreatedAt),
		record.OwnerID,
		record.Name,
		record.Amount.String(),
		record.Category,
		string(record.Emotion),
		record.FinalName,
		record.FinalAmount.String(),
		record.DecisionNote,
		record.Advice,
	)
	if err != nil {
		return model.PurchaseRecord{}, classifyError("failed to save purchase record", err)
	}

	return record, nil
}

// ListRecords returns every record owned by ownerID, newest first.
func (s *SQLiteStorage) ListRecords(ctx context.Context, ownerID string) ([]model.PurchaseRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM purchases
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, ownerID)
	if err != nil {
		return nil, classifyError("failed to query purchase records", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.PurchaseRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("failed to read purchase records", err)
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (model.PurchaseRecord, error) {
	var (
		record                  model.PurchaseRecord
		createdAt, emotion      string
		amountText, finalAmount string
	)
	if err := rows.Scan(
		&record.ID,
		&createdAt,
		&record.OwnerID,
		&record.Name,
		&amountText,
		&record.Category,
		&emotion,
		&record.FinalName,
		&finalAmount,
		&record.DecisionNote,
		&record.Advice,
	); err != nil {
		return model.PurchaseRecord{}, fmt.Errorf("failed to scan purchase record: %w", err)
	}

	var err error
	if record.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return model.PurchaseRecord{}, fmt.Errorf("record %s has invalid created_at: %w", record.ID, err)
	}
	if record.Amount, err = decimal.NewFromString(amountText); err != nil {
		return model.PurchaseRecord{}, fmt.Errorf("record %s has invalid amount: %w", record.ID, err)
	}
	if record.FinalAmount, err = decimal.NewFromString(finalAmount); err != nil {
		return model.PurchaseRecord{}, fmt.Errorf("record %s has invalid final amount: %w", record.ID, err)
	}
	record.Emotion = model.Emotion(emotion)

	return record, nil
}

// classifyError maps driver errors onto the persistence error kinds: a
// timeout is a transport failure, anything else is a refused write.
func classifyError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", common.ErrTransport, msg, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %w: %s: %w", common.ErrPersistence, common.ErrDuplicateEntry, msg, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", common.ErrPersistence, msg, err)
}
