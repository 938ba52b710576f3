package workflow

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/shopspring/decimal"
)

// AssembleRecord converts a finished candidate into the input for a create-row
// call. It re-checks every required field even though the state machine has
// already validated them, and it has no side effects.
func AssembleRecord(c model.PurchaseCandidate, ownerID string) (model.PurchaseRecordInput, error) {
	if strings.TrimSpace(ownerID) == "" {
		return model.PurchaseRecordInput{}, fieldError("ownerId", "no signed-in user")
	}
	if strings.TrimSpace(c.ItemName) == "" {
		return model.PurchaseRecordInput{}, fieldError("itemName", "enter the item you want to buy")
	}
	if c.Amount.IsNegative() {
		return model.PurchaseRecordInput{}, fieldError("amount", "amount cannot be negative")
	}
	if _, ok := model.ParseCategory(string(c.Category)); !ok {
		return model.PurchaseRecordInput{}, fieldError("category", fmt.Sprintf("unknown category %q", c.Category))
	}
	for i, answer := range c.ReflectionAnswers {
		if strings.TrimSpace(answer) == "" {
			return model.PurchaseRecordInput{}, fieldError(answerField(i), "answer every question")
		}
	}
	if strings.TrimSpace(c.AdvisoryText) == "" {
		return model.PurchaseRecordInput{}, fieldError("advisoryText", "no suggestion has been generated")
	}
	if strings.TrimSpace(c.FinalDecisionNote) == "" {
		return model.PurchaseRecordInput{}, fieldError("finalDecisionNote", "enter your final decision")
	}
	finalAmount := c.ResolvedFinalAmount()
	if finalAmount.IsNegative() {
		return model.PurchaseRecordInput{}, fieldError("finalAmount", "amount cannot be negative")
	}

	return model.PurchaseRecordInput{
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(c.ItemName),
		Amount:       c.Amount,
		Category:     string(c.Category),
		Emotion:      ClassifyEmotion(c.Amount, c.ReflectionAnswers),
		FinalName:    strings.TrimSpace(c.ResolvedFinalName()),
		FinalAmount:  finalAmount,
		DecisionNote: strings.TrimSpace(c.FinalDecisionNote),
		Advice:       strings.TrimSpace(c.AdvisoryText),
	}, nil
}

func answerField(i int) string {
	return fmt.Sprintf("reflectionAnswers[%d]", i)
}

// parseAmount accepts a non-negative decimal, optionally prefixed with "$"
// and using "," as a thousands separator.
func parseAmount(field, raw string) (decimal.Decimal, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "$")
	text = strings.ReplaceAll(text, ",", "")
	if text == "" {
		return decimal.Zero, fieldError(field, "enter an amount")
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fieldError(field, fmt.Sprintf("%q is not a number", raw))
	}
	if amount.IsNegative() {
		return decimal.Zero, fieldError(field, "amount cannot be negative")
	}
	return amount, nil
}
