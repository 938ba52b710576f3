package tui

import (
	"context"

	"github.com/Veraticus/ponder/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
)

// requestAdvice asks the engine for a suggestion off the UI goroutine.
func requestAdvice(ctx context.Context, engine *workflow.Engine) tea.Cmd {
	return func() tea.Msg {
		text, err := engine.RequestAdvice(ctx)
		return adviceMsg{text: text, err: err}
	}
}

// commitDecision writes the record off the UI goroutine.
func commitDecision(ctx context.Context, engine *workflow.Engine) tea.Cmd {
	return func() tea.Msg {
		record, err := engine.Commit(ctx)
		return commitMsg{record: record, err: err}
	}
}
