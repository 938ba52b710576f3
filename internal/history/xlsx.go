package history

import (
	"fmt"
	"io"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the report is written to.
const SheetName = "Decisions"

var xlsxHeaders = []string{
	"Date",
	"Item",
	"Category",
	"Amount",
	"Final Item",
	"Final Amount",
	"Emotion",
	"Status",
	"Decision",
	"Advice",
}

// WriteXLSX writes records as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []model.PurchaseRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, r := range records {
		row := i + 2
		amount, _ := r.Amount.Float64()
		finalAmount, _ := r.FinalAmount.Float64()
		values := []any{
			r.CreatedAt.UTC().Format(dateLayout),
			r.Name,
			r.Category,
			amount,
			r.FinalName,
			finalAmount,
			string(r.Emotion),
			string(r.Status()),
			r.DecisionNote,
			r.Advice,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 12) // date
	_ = f.SetColWidth(SheetName, "B", "B", 28) // item
	_ = f.SetColWidth(SheetName, "C", "C", 14) // category
	_ = f.SetColWidth(SheetName, "D", "D", 12) // amount
	_ = f.SetColWidth(SheetName, "E", "E", 28) // final item
	_ = f.SetColWidth(SheetName, "F", "H", 12)
	_ = f.SetColWidth(SheetName, "I", "J", 48) // notes

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
