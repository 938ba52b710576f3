package tui

import "github.com/Veraticus/ponder/internal/model"

// Async operation messages.
type adviceMsg struct {
	err  error
	text string
}

type commitMsg struct {
	err    error
	record model.PurchaseRecord
}
