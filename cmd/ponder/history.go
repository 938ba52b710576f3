package main

import (
	"log/slog"

	"github.com/Veraticus/ponder/internal/history"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your past decisions",
		Long:  `Show your recorded decisions, newest first, with a status badge derived from each decision.`,
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 0, "Show at most this many decisions (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	records, err := history.NewService(d.store, d.sessions, slog.Default()).List(ctx)
	if err != nil {
		return err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return history.RenderTable(cmd.OutOrStdout(), records)
}
