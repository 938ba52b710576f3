package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/ponder/internal/cli"
	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/workflow"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func adviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Get a suggestion without recording anything",
		Long: `Ask for a suggestion about a purchase. Uses the configured advisory
provider, or the offline heuristic when none is configured. Nothing is saved.`,
		Example: `  ponder advise --item "Gaming PC" --amount 1200`,
		RunE:    runAdvise,
	}

	cmd.Flags().String("item", "", "What you want to buy")
	cmd.Flags().String("amount", "", "How much it costs")
	cmd.Flags().String("essential", "", "Answer: is this essential or optional?")
	cmd.Flags().String("afford", "", "Answer: can you afford this without impacting essentials?")
	cmd.Flags().String("value", "", "Answer: will it provide long-term value or satisfaction?")
	cmd.Flags().Bool("offline", false, "Use the heuristic suggestion even if a provider is configured")

	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAdvise(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return strings.TrimSpace(v)
	}
	offline, _ := cmd.Flags().GetBool("offline")

	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimPrefix(flag("amount"), "$"), ",", ""))
	if err != nil || amount.IsNegative() {
		return common.NewUserError("--amount must be a non-negative number", common.ErrValidation)
	}
	candidate := model.PurchaseCandidate{
		ItemName:          flag("item"),
		Amount:            amount,
		ReflectionAnswers: [model.QuestionCount]string{flag("essential"), flag("afford"), flag("value")},
	}
	if candidate.ItemName == "" {
		return common.NewUserError("--item is required", common.ErrValidation)
	}

	advice := workflow.HeuristicAdvice(candidate.ItemName, candidate.Amount)
	if !offline {
		adv, fallback, closeAdvisor, err := initAdvisor()
		if err != nil {
			return err
		}
		defer closeAdvisor()

		if adv != nil {
			text, err := adv.Advise(ctx, workflow.BuildPrompt(candidate))
			switch {
			case err == nil && strings.TrimSpace(text) != "":
				advice = strings.TrimSpace(text)
			case fallback:
				slog.Warn("Advisory service failed, using heuristic", "error", err)
			default:
				return common.NewUserError("could not get a suggestion", err)
			}
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Suggestion", advice))
	return nil
}
