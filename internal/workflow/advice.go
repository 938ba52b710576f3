package workflow

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/shopspring/decimal"
)

// SignificantThreshold is the amount above which a purchase counts as significant.
var SignificantThreshold = decimal.NewFromInt(100)

// Significance labels used by the heuristic advice.
const (
	Significant = "significant"
	Reasonable  = "reasonable"
)

// Significance returns Significant iff amount exceeds SignificantThreshold.
func Significance(amount decimal.Decimal) string {
	if amount.GreaterThan(SignificantThreshold) {
		return Significant
	}
	return Reasonable
}

// HeuristicAdvice is the offline suggestion used when no advisory service is
// configured or reachable. It depends only on its arguments.
func HeuristicAdvice(item string, amount decimal.Decimal) string {
	return fmt.Sprintf("Spending $%s on %q seems %s. "+
		"Based on your answers, consider waiting if it's not urgent or will stretch your budget.",
		amount.String(), item, Significance(amount))
}

// BuildPrompt renders the advisory request for a candidate that has finished
// the reflection stage.
func BuildPrompt(c model.PurchaseCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I am considering buying %q for $%s.", c.ItemName, c.Amount.String())
	if c.Category != model.CategoryUnset {
		fmt.Fprintf(&b, " It falls under %s.", c.Category)
	}
	b.WriteString(" Here is how I answered some questions about it:\n")
	for i, q := range model.ReflectionQuestions {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, q, strings.TrimSpace(c.ReflectionAnswers[i]))
	}
	b.WriteString("Give me short, practical financial advice on whether I should make this purchase now, " +
		"wait, or skip it. Answer in two or three sentences.")
	return b.String()
}

// ClassifyEmotion tags a decision: negative when the amount is significant,
// positive when the affordability answer starts with "yes", neutral otherwise.
func ClassifyEmotion(amount decimal.Decimal, answers [model.QuestionCount]string) model.Emotion {
	if Significance(amount) == Significant {
		return model.EmotionNegative
	}
	affordable := strings.ToLower(strings.TrimSpace(answers[1]))
	if strings.HasPrefix(affordable, "yes") {
		return model.EmotionPositive
	}
	return model.EmotionNeutral
}
