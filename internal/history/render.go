package history

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// EmptyMessage is shown when the user has no records.
const EmptyMessage = "No decisions recorded yet."

const dateLayout = "2006-01-02"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderTable writes records as a bordered table of item, amounts, date,
// emotion and status badge.
func RenderTable(w io.Writer, records []model.PurchaseRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Item", "Amount", "Final", "Emotion", "Status").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range records {
		final := "-"
		if !r.FinalAmount.Equal(r.Amount) || r.FinalName != r.Name {
			final = fmt.Sprintf("%s ($%s)", r.FinalName, r.FinalAmount.StringFixed(2))
		}
		t.Row(
			r.CreatedAt.Local().Format(dateLayout),
			r.Name,
			"$"+r.Amount.StringFixed(2),
			final,
			string(r.Emotion),
			string(r.Status()),
		)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriteJSON writes the raw report: every record, 2-space indented.
func WriteJSON(w io.Writer, records []model.PurchaseRecord) error {
	if records == nil {
		records = []model.PurchaseRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
