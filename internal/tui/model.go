// Package tui provides the interactive purchase form. Each workflow stage is
// a small group of text inputs; the workflow engine owns the candidate and
// the model only owns what is typed and shown.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/tui/themes"
	"github.com/Veraticus/ponder/internal/workflow"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Input groups, one per stage that takes typed input.
const (
	formEntry = iota
	formReflection
	formDecision
	formCount
)

// Model holds the main TUI state.
type Model struct {
	ctx        context.Context
	lastError  error
	engine     *workflow.Engine
	record     *model.PurchaseRecord
	theme      themes.Theme
	fieldError string
	advice     string
	inputs     [formCount][]textinput.Model
	help       help.Model
	keymap     KeyMap
	spinner    spinner.Model
	width      int
	height     int
	focus      int
	errorField int
	busy       bool
	discarded  bool
	quitting   bool
}

// Result is what the form ended with.
type Result struct {
	Record    *model.PurchaseRecord
	Discarded bool
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "› "
	return ti
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, engine *workflow.Engine, cfg Config) Model {
	m := Model{
		ctx:        ctx,
		engine:     engine,
		theme:      cfg.Theme,
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:      cfg.Width,
		height:     cfg.Height,
		errorField: -1,
	}
	m.spinner.Style = m.theme.FocusedLabel

	m.inputs[formEntry] = []textinput.Model{
		newInput("Coffee machine", 120),
		newInput("149.99", 20),
		newInput("optional, e.g. home or electronics", 20),
	}
	for i := 0; i < model.QuestionCount; i++ {
		m.inputs[formReflection] = append(m.inputs[formReflection], newInput("Your answer", 280))
	}
	m.inputs[formDecision] = []textinput.Model{
		newInput("Approved, or wait a week", 280),
		newInput("same item", 120),
		newInput("same amount", 20),
	}

	m.focusInput(formEntry, 0)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Result reports how the form ended.
func (m Model) Result() Result {
	return Result{Record: m.record, Discarded: m.discarded}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case adviceMsg:
		return m.handleAdvice(msg)

	case commitMsg:
		return m.handleCommit(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

// handleKey handles navigation and stage submission.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.engine.State()

	switch {
	case key.Matches(msg, m.keymap.Quit), key.Matches(msg, m.keymap.Discard):
		if state != workflow.StateDone {
			m.engine.Discard()
			m.discarded = true
		}
		m.quitting = true
		return m, tea.Quit
	}

	if state == workflow.StateDone {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	form := m.form()
	switch {
	case key.Matches(msg, m.keymap.Retry):
		if state == workflow.StateAdvisoryPending {
			return m.startAdvice()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Next) && form >= 0:
		m.focusInput(form, (m.focus+1)%len(m.inputs[form]))
		return m, nil

	case key.Matches(msg, m.keymap.Prev) && form >= 0:
		m.focusInput(form, (m.focus+len(m.inputs[form])-1)%len(m.inputs[form]))
		return m, nil

	case key.Matches(msg, m.keymap.Submit):
		if form >= 0 && m.focus < len(m.inputs[form])-1 {
			m.focusInput(form, m.focus+1)
			return m, nil
		}
		return m.submit()
	}

	return m.updateFocused(msg)
}

// submit pushes the current stage's inputs into the engine.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.lastError = nil
	m.fieldError = ""
	m.errorField = -1

	switch m.engine.State() {
	case workflow.StateEntry:
		v := m.values(formEntry)
		err := m.engine.SetEntry(v[0], v[1], v[2])
		if err == nil {
			err = m.engine.SubmitEntry()
		}
		if err != nil {
			m.showError(err)
			return m, nil
		}
		m.focusInput(formReflection, 0)
		return m, nil

	case workflow.StateReflection:
		for i, answer := range m.values(formReflection) {
			if err := m.engine.SetAnswer(i, answer); err != nil {
				m.showError(err)
				return m, nil
			}
		}
		if err := m.engine.SubmitReflection(); err != nil {
			m.showError(err)
			return m, nil
		}
		return m.startAdvice()

	case workflow.StateAdvisoryPending:
		return m.startAdvice()

	case workflow.StateDecision:
		v := m.values(formDecision)
		if err := m.engine.SetDecision(v[0], v[1], v[2]); err != nil {
			m.showError(err)
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, commitDecision(m.ctx, m.engine))
	}

	return m, nil
}

func (m Model) startAdvice() (tea.Model, tea.Cmd) {
	m.busy = true
	m.lastError = nil
	return m, tea.Batch(m.spinner.Tick, requestAdvice(m.ctx, m.engine))
}

func (m Model) handleAdvice(msg adviceMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if errors.Is(msg.err, workflow.ErrDiscarded) {
		return m, nil
	}
	if msg.err != nil {
		m.lastError = msg.err
		return m, nil
	}

	m.advice = msg.text
	candidate := m.engine.Candidate()
	m.inputs[formDecision][1].Placeholder = candidate.ItemName
	m.inputs[formDecision][2].Placeholder = candidate.Amount.String()
	m.focusInput(formDecision, 0)
	return m, nil
}

func (m Model) handleCommit(msg commitMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if errors.Is(msg.err, workflow.ErrDiscarded) {
		return m, nil
	}
	if msg.err != nil {
		m.showError(msg.err)
		return m, nil
	}

	record := msg.record
	m.record = &record
	m.quitting = true
	return m, tea.Quit
}

// showError places a field error next to its input, anything else in the
// status line.
func (m *Model) showError(err error) {
	var fieldErr *workflow.FieldError
	if errors.As(err, &fieldErr) {
		m.fieldError = fieldErr.Reason
		m.errorField = fieldIndex(fieldErr.Field)
		if form := m.form(); form >= 0 && m.errorField >= 0 && m.errorField < len(m.inputs[form]) {
			m.focusInput(form, m.errorField)
		}
		return
	}
	m.lastError = err
}

func fieldIndex(field string) int {
	switch field {
	case "itemName", "finalDecisionNote":
		return 0
	case "amount", "finalName":
		return 1
	case "category", "finalAmount":
		return 2
	}
	var i int
	if _, err := fmt.Sscanf(field, "reflectionAnswers[%d]", &i); err == nil {
		return i
	}
	return -1
}

// form returns the input group for the engine's current state, or -1.
func (m Model) form() int {
	switch m.engine.State() {
	case workflow.StateEntry:
		return formEntry
	case workflow.StateReflection:
		return formReflection
	case workflow.StateDecision, workflow.StateCommitting:
		return formDecision
	default:
		return -1
	}
}

func (m *Model) focusInput(form, index int) {
	for f := range m.inputs {
		for i := range m.inputs[f] {
			m.inputs[f][i].Blur()
		}
	}
	m.focus = index
	m.inputs[form][index].Focus()
}

func (m Model) values(form int) []string {
	out := make([]string, len(m.inputs[form]))
	for i, in := range m.inputs[form] {
		out[i] = in.Value()
	}
	return out
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	form := m.form()
	if form < 0 || m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[form][m.focus], cmd = m.inputs[form][m.focus].Update(msg)
	return m, cmd
}
