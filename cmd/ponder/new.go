package main

import (
	"fmt"

	"github.com/Veraticus/ponder/internal/cli"
	"github.com/Veraticus/ponder/internal/tui"
	"github.com/Veraticus/ponder/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Think through a new purchase interactively",
		Long: `Open the purchase form: enter what you want to buy, answer three
questions about it, read the suggestion and record your decision.

Press Esc at any time to close the form without saving anything.`,
		RunE: runNew,
	}

	cmd.Flags().Bool("fullscreen", false, "Use the terminal's alternate screen")
	cmd.Flags().String("theme", "", "Color theme (default, catppuccin-mocha)")
	_ = viper.BindPFlag("ui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runNew(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fullscreen, _ := cmd.Flags().GetBool("fullscreen")

	engine, cleanup, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := tui.Run(ctx, engine,
		tui.WithTheme(themes.ByName(viper.GetString("ui.theme"))),
		tui.WithAltScreen(fullscreen),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case result.Record != nil:
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved %q as %s", result.Record.FinalName, result.Record.Status())))
	case result.Discarded:
		fmt.Fprintln(out, cli.FormatInfo("Discarded, nothing was saved"))
	}
	return nil
}
