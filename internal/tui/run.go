package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/ponder/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the purchase form for engine until the decision is saved or
// discarded. Interrupting the program discards the workflow.
func Run(ctx context.Context, engine *workflow.Engine, opts ...Option) (Result, error) {
	if engine == nil {
		return Result{}, errors.New("workflow engine is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Input != nil {
		programOpts = append(programOpts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(cfg.Output))
	}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(newModel(ctx, engine, cfg), programOpts...).Run()
	if err != nil {
		engine.Discard()
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return Result{Discarded: true}, nil
		}
		return Result{}, fmt.Errorf("TUI error: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Result(), nil
}
