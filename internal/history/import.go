package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/schollz/progressbar/v3"
)

// ImportResult counts what happened to each row of a report.
type ImportResult struct {
	Imported int
	Skipped  int
	Failed   int
}

// Import re-creates the records of a JSON report for the signed-in user,
// oldest first, so the imported history lists in the same order as the
// report. Rows owned by someone else are skipped. Rows the store rejects are counted
// as failed; an auth or transport failure stops the import.
func (s *Service) Import(ctx context.Context, r io.Reader, progress io.Writer) (ImportResult, error) {
	var result ImportResult

	var records []model.PurchaseRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return result, fmt.Errorf("%w: invalid report: %w", common.ErrValidation, err)
	}

	owner, err := s.Owner(ctx)
	if err != nil {
		return result, err
	}

	records = oldestFirst(records)

	bar := newImportBar(len(records), progress)
	defer func() { _ = bar.Finish() }()

	var failures []error
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if record.OwnerID != "" && record.OwnerID != owner {
			result.Skipped++
			_ = bar.Add(1)
			continue
		}

		input := record.Input()
		input.OwnerID = owner
		if input.FinalName == "" {
			input.FinalName = input.Name
		}

		if _, err := s.store.CreateRecord(ctx, input); err != nil {
			if errors.Is(err, common.ErrAuth) || errors.Is(err, common.ErrTransport) {
				return result, err
			}
			result.Failed++
			failures = append(failures, fmt.Errorf("%q: %w", record.Name, err))
			s.logger.Warn("import row rejected", "name", record.Name, "error", err)
		} else {
			result.Imported++
		}
		_ = bar.Add(1)
	}

	s.logger.Info("import finished",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, errors.Join(failures...)
}

// oldestFirst orders a newest-first report for insertion. Rows with equal
// timestamps keep their relative report order reversed.
func oldestFirst(records []model.PurchaseRecord) []model.PurchaseRecord {
	out := slices.Clone(records)
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func newImportBar(total int, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing decisions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}
