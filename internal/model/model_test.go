package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"", CategoryUnset, true},
		{"  ", CategoryUnset, true},
		{"home", CategoryHome, true},
		{" Electronics ", CategoryElectronics, true},
		{"TRAVEL", CategoryTravel, true},
		{"boats", CategoryUnset, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPurchaseCandidate_Resolved(t *testing.T) {
	c := PurchaseCandidate{ItemName: "New Gaming PC", Amount: decimal.NewFromInt(1200)}
	assert.Equal(t, "New Gaming PC", c.ResolvedFinalName())
	assert.True(t, c.ResolvedFinalAmount().Equal(decimal.NewFromInt(1200)))

	used := decimal.NewFromInt(800)
	c.FinalName = "Used Gaming PC"
	c.FinalAmount = &used
	assert.Equal(t, "Used Gaming PC", c.ResolvedFinalName())
	assert.True(t, c.ResolvedFinalAmount().Equal(used))
}

func TestPurchaseRecord_Status(t *testing.T) {
	tests := []struct {
		note string
		want Status
	}{
		{"Approved", StatusApproved},
		{"approve, it's on sale", StatusApproved},
		{"Yes!", StatusApproved},
		{"buy the used one", StatusApproved},
		{"Wait a week", StatusDeferred},
		{"not approved", StatusDeferred},
		{"go for it", StatusDeferred},
		{"purchase later", StatusDeferred},
		{"Bought: on sale", StatusApproved},
		{"", StatusDeferred},
	}

	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			assert.Equal(t, tt.want, PurchaseRecord{DecisionNote: tt.note}.Status())
		})
	}
}

func TestEmotion_Valid(t *testing.T) {
	for _, e := range []Emotion{EmotionPositive, EmotionNeutral, EmotionNegative} {
		assert.True(t, e.Valid(), e)
	}
	assert.False(t, Emotion("ecstatic").Valid())
	assert.False(t, Emotion("").Valid())
}

func TestPurchaseRecord_JSON(t *testing.T) {
	r := PurchaseRecord{
		ID:           "0b6f",
		CreatedAt:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		OwnerID:      "user-1",
		Name:         "Coffee",
		Amount:       decimal.RequireFromString("4.50"),
		Emotion:      EmotionPositive,
		FinalName:    "Coffee",
		FinalAmount:  decimal.RequireFromString("4.50"),
		DecisionNote: "Yes",
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.InDelta(t, 4.5, raw["amount"], 0.0001)
	assert.InDelta(t, 4.5, raw["final_amount"], 0.0001)
	assert.Equal(t, "user-1", raw["userId"])
	assert.Equal(t, "2024-03-10T12:00:00Z", raw["created_at"])

	var back PurchaseRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Amount.Equal(r.Amount))
	assert.Equal(t, r.OwnerID, back.Input().OwnerID)
	assert.Equal(t, r.DecisionNote, back.DecisionNote)
}
