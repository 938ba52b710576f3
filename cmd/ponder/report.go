package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/ponder/internal/cli"
	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/config"
	"github.com/Veraticus/ponder/internal/history"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Dump every decision as JSON or a spreadsheet",
		Long: `Write all of your records, newest first.

The JSON report can be re-imported with 'ponder import'. The xlsx format
requires --out.`,
		Example: `  ponder report > decisions.json
  ponder report --format xlsx --out decisions.xlsx`,
		RunE: runReport,
	}

	cmd.Flags().String("format", "json", "Output format (json, xlsx)")
	cmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	format = strings.ToLower(format)

	if format != "json" && format != "xlsx" {
		return common.NewUserError(fmt.Sprintf("unknown format %q", format), common.ErrValidation)
	}
	if format == "xlsx" && outPath == "" {
		return common.NewUserError("--out is required for xlsx reports", common.ErrValidation)
	}

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	records, err := history.NewService(d.store, d.sessions, slog.Default()).List(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(config.ExpandPath(outPath))
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch format {
	case "xlsx":
		err = history.WriteXLSX(w, records)
	default:
		err = history.WriteJSON(w, records)
	}
	if err != nil {
		return err
	}

	if outPath != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Wrote %d records to %s", len(records), outPath)))
	}
	return nil
}
