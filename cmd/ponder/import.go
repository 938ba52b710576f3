package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/ponder/internal/cli"
	"github.com/Veraticus/ponder/internal/config"
	"github.com/Veraticus/ponder/internal/history"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <report.json>",
		Short: "Re-create records from a JSON report",
		Long: `Import a report written by 'ponder report' into the current backend.

Each row becomes a new record owned by you. Rows that belong to another
user are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("no-progress", false, "Hide the progress bar")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	interrupts := cli.NewInterruptHandler(os.Stderr, "Import")
	ctx := interrupts.HandleInterrupts(cmd.Context(), true)
	defer interrupts.Stop()

	noProgress, _ := cmd.Flags().GetBool("no-progress")

	f, err := os.Open(config.ExpandPath(args[0]))
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer func() { _ = f.Close() }()

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	progress := cmd.ErrOrStderr()
	if noProgress {
		progress = nil
	}

	result, err := history.NewService(d.store, d.sessions, slog.Default()).Import(ctx, f, progress)
	if interrupts.WasInterrupted() {
		return nil
	}
	if err != nil && result == (history.ImportResult{}) {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d records", result.Imported)))
	if result.Skipped > 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Skipped %d records owned by another user", result.Skipped)))
	}
	if result.Failed > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d records could not be saved", result.Failed)))
	}
	return err
}
