package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/ponder/internal/cli"
	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/spf13/cobra"
)

func decideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Record a purchase decision from flags",
		Long: `Run the full decision workflow without the interactive form.

The three reflection answers are required:
  --essential  Is this essential or optional?
  --afford     Can you afford this without impacting essentials?
  --value      Will it provide long-term value or satisfaction?

Without --decision the suggestion is printed and nothing is saved.`,
		Example: `  ponder decide --item "Coffee machine" --amount 149.99 --category home \
    --essential optional --afford yes --value "daily use" --decision "Approved"`,
		RunE: runDecide,
	}

	cmd.Flags().String("item", "", "What you want to buy")
	cmd.Flags().String("amount", "", "How much it costs")
	cmd.Flags().String("category", "", fmt.Sprintf("Optional category %v", model.Categories()))
	cmd.Flags().String("essential", "", "Answer: is this essential or optional?")
	cmd.Flags().String("afford", "", "Answer: can you afford this without impacting essentials?")
	cmd.Flags().String("value", "", "Answer: will it provide long-term value or satisfaction?")
	cmd.Flags().String("decision", "", "Your final decision")
	cmd.Flags().String("final-name", "", "Item you actually settled on (defaults to --item)")
	cmd.Flags().String("final-amount", "", "Amount you actually settled on (defaults to --amount)")

	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runDecide(cmd *cobra.Command, _ []string) error {
	interrupts := cli.NewInterruptHandler(os.Stderr, "Decision")
	ctx := interrupts.HandleInterrupts(cmd.Context(), false)
	defer interrupts.Stop()

	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}

	engine, cleanup, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.SetEntry(flag("item"), flag("amount"), flag("category")); err != nil {
		return err
	}
	if err := engine.SubmitEntry(); err != nil {
		return common.NewUserError("invalid purchase", err)
	}

	for i, name := range []string{"essential", "afford", "value"} {
		if err := engine.SetAnswer(i, flag(name)); err != nil {
			return err
		}
	}
	if err := engine.SubmitReflection(); err != nil {
		return common.NewUserError("--essential, --afford and --value are all required", err)
	}

	advice, err := engine.RequestAdvice(ctx)
	if err != nil {
		return common.NewUserError("could not get a suggestion", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderBox("Suggestion", advice))

	if flag("decision") == "" {
		fmt.Fprintln(out, cli.FormatInfo("No --decision given, nothing was saved"))
		return nil
	}

	if err := engine.SetDecision(flag("decision"), flag("final-name"), flag("final-amount")); err != nil {
		return common.NewUserError("invalid decision", err)
	}
	record, err := engine.Commit(ctx)
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return common.NewUserError("could not save the decision", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved %q for $%s as %s",
		record.FinalName, record.FinalAmount.StringFixed(2), cli.FormatStatus(record.Status()))))
	return nil
}
