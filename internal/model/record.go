package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Emotion classifies how comfortable a purchase decision looks.
type Emotion string

// Emotion values stored with every record.
const (
	EmotionPositive Emotion = "positive"
	EmotionNeutral  Emotion = "neutral"
	EmotionNegative Emotion = "negative"
)

// Valid reports whether e is one of the known emotions.
func (e Emotion) Valid() bool {
	switch e {
	case EmotionPositive, EmotionNeutral, EmotionNegative:
		return true
	default:
		return false
	}
}

// PurchaseRecordInput is everything needed to create a record. The persistence
// service assigns the id and creation time.
type PurchaseRecordInput struct {
	OwnerID      string          `json:"userId"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Emotion      Emotion         `json:"emotion"`
	FinalName    string          `json:"final_name"`
	DecisionNote string          `json:"decision_note"`
	Advice       string          `json:"advice"`
	Amount       decimal.Decimal `json:"amount"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
}

// PurchaseRecord is a persisted, immutable purchase decision.
type PurchaseRecord struct {
	CreatedAt    time.Time       `json:"created_at"`
	ID           string          `json:"id"`
	OwnerID      string          `json:"userId"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Emotion      Emotion         `json:"emotion"`
	FinalName    string          `json:"final_name"`
	DecisionNote string          `json:"decision_note"`
	Advice       string          `json:"advice"`
	Amount       decimal.Decimal `json:"amount"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
}

// Input returns the creatable part of the record.
func (r PurchaseRecord) Input() PurchaseRecordInput {
	return PurchaseRecordInput{
		OwnerID:      r.OwnerID,
		Name:         r.Name,
		Amount:       r.Amount,
		Category:     r.Category,
		Emotion:      r.Emotion,
		FinalName:    r.FinalName,
		FinalAmount:  r.FinalAmount,
		DecisionNote: r.DecisionNote,
		Advice:       r.Advice,
	}
}

// MarshalJSON writes amounts as JSON numbers, matching the hosted row format.
func (r PurchaseRecord) MarshalJSON() ([]byte, error) {
	type alias PurchaseRecord
	return json.Marshal(struct {
		alias
		Amount      json.Number `json:"amount"`
		FinalAmount json.Number `json:"final_amount"`
	}{alias(r), json.Number(r.Amount.String()), json.Number(r.FinalAmount.String())})
}

// MarshalJSON writes amounts as JSON numbers, matching the hosted row format.
func (in PurchaseRecordInput) MarshalJSON() ([]byte, error) {
	type alias PurchaseRecordInput
	return json.Marshal(struct {
		alias
		Amount      json.Number `json:"amount"`
		FinalAmount json.Number `json:"final_amount"`
	}{alias(in), json.Number(in.Amount.String()), json.Number(in.FinalAmount.String())})
}

// Status is the badge shown in history listings.
type Status string

// Decision statuses.
const (
	StatusApproved Status = "Approved"
	StatusDeferred Status = "Deferred"
)

var approvalWords = []string{"approve", "approved", "buy", "bought", "yes"}

// Status derives the history badge from the decision note.
func (r PurchaseRecord) Status() Status {
	note := strings.ToLower(strings.TrimSpace(r.DecisionNote))
	fields := strings.FieldsFunc(note, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == ':'
	})
	if len(fields) == 0 {
		return StatusDeferred
	}
	for _, w := range approvalWords {
		if fields[0] == w {
			return StatusApproved
		}
	}
	return StatusDeferred
}
