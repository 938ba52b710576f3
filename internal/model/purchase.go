package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the coarse bucket a purchase falls into.
type Category string

// Fixed purchase categories. The zero value means unset.
const (
	CategoryUnset         Category = ""
	CategoryEssentials    Category = "essentials"
	CategoryElectronics   Category = "electronics"
	CategoryHome          Category = "home"
	CategoryEntertainment Category = "entertainment"
	CategoryTravel        Category = "travel"
	CategoryHealth        Category = "health"
	CategoryOther         Category = "other"
)

// Categories lists every selectable category in display order.
func Categories() []Category {
	return []Category{
		CategoryEssentials,
		CategoryElectronics,
		CategoryHome,
		CategoryEntertainment,
		CategoryTravel,
		CategoryHealth,
		CategoryOther,
	}
}

// ParseCategory normalizes s and reports whether it names a known category.
// An empty string parses to CategoryUnset.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == CategoryUnset {
		return CategoryUnset, true
	}
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return CategoryUnset, false
}

// QuestionCount is the number of reflection questions asked for every purchase.
const QuestionCount = 3

// ReflectionQuestions are asked, in order, before any advice is generated.
var ReflectionQuestions = [QuestionCount]string{
	"Is this essential or optional?",
	"Can you afford this without impacting essentials?",
	"Will it provide long-term value or satisfaction?",
}

// PurchaseCandidate is an in-progress purchase decision. It is never persisted;
// a successful commit turns it into a PurchaseRecord.
type PurchaseCandidate struct {
	FinalAmount       *decimal.Decimal
	ItemName          string
	Category          Category
	AdvisoryText      string
	FinalDecisionNote string
	FinalName         string
	Amount            decimal.Decimal
	ReflectionAnswers [QuestionCount]string
}

// ResolvedFinalName returns the post-decision name, falling back to the item name.
func (c PurchaseCandidate) ResolvedFinalName() string {
	if name := strings.TrimSpace(c.FinalName); name != "" {
		return name
	}
	return c.ItemName
}

// ResolvedFinalAmount returns the post-decision amount, falling back to the entry amount.
func (c PurchaseCandidate) ResolvedFinalAmount() decimal.Decimal {
	if c.FinalAmount != nil {
		return *c.FinalAmount
	}
	return c.Amount
}
