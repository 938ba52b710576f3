package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/workflow"
	"github.com/charmbracelet/lipgloss"
)

var formLabels = [formCount][]string{
	formEntry:    {"What do you want to buy?", "Amount", "Category"},
	formDecision: {"Final decision", "Final item (optional)", "Final amount (optional)"},
}

// View renders the UI.
func (m Model) View() string {
	if m.discarded {
		return m.theme.StatusPending.Render("Discarded. Nothing was saved.") + "\n"
	}
	if m.record != nil {
		return m.renderDone()
	}
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Ponder: think before you buy"))
	b.WriteString("\n")

	switch m.engine.State() {
	case workflow.StateEntry:
		b.WriteString(m.renderForm(formEntry, formLabels[formEntry]))

	case workflow.StateReflection:
		b.WriteString(m.renderSummary())
		questions := m.engine.Questions()
		b.WriteString(m.renderForm(formReflection, questions[:]))

	case workflow.StateAdvisoryPending:
		b.WriteString(m.renderSummary())
		if m.busy {
			b.WriteString(m.spinner.View() + " Thinking it over...\n")
		} else {
			b.WriteString(m.theme.StatusPending.Render("Press Enter or Ctrl+R to ask for a suggestion.") + "\n")
		}

	case workflow.StateDecision, workflow.StateCommitting:
		b.WriteString(m.renderSummary())
		b.WriteString(m.theme.Bold.Render("Suggestion") + "\n")
		b.WriteString(m.theme.Advice.Render(m.advice) + "\n\n")
		b.WriteString(m.renderForm(formDecision, formLabels[formDecision]))
		if m.busy {
			b.WriteString(m.spinner.View() + " Saving...\n")
		}
	}

	if m.lastError != nil {
		b.WriteString("\n" + m.theme.StatusError.Render("✗ "+m.lastError.Error()) + "\n")
		if m.engine.State() == workflow.StateAdvisoryPending {
			b.WriteString(m.theme.StatusPending.Render("Press Ctrl+R to try again.") + "\n")
		}
	}

	b.WriteString("\n" + m.help.View(m.keymap))

	box := m.theme.RoundedBox
	if m.width > 4 {
		box = box.Width(min(m.width-2, 100))
	}
	return box.Render(b.String())
}

func (m Model) renderForm(form int, labels []string) string {
	var b strings.Builder
	for i, in := range m.inputs[form] {
		label := m.theme.Label
		if i == m.focus {
			label = m.theme.FocusedLabel
		}
		b.WriteString(label.Render(labels[i]) + "\n")
		b.WriteString(in.View() + "\n")
		if i == m.errorField && m.fieldError != "" {
			b.WriteString(m.theme.StatusError.Render("  "+m.fieldError) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSummary() string {
	c := m.engine.Candidate()
	line := fmt.Sprintf("%s · $%s", c.ItemName, c.Amount.StringFixed(2))
	if c.Category != model.CategoryUnset {
		line += " · " + string(c.Category)
	}
	return m.theme.Subtitle.Render(line) + "\n"
}

func (m Model) renderDone() string {
	r := m.record
	status := m.theme.StatusWarning
	if r.Status() == model.StatusApproved {
		status = m.theme.StatusSuccess
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.StatusSuccess.Render("✓ Decision saved"),
		fmt.Sprintf("%s for $%s  %s", r.FinalName, r.FinalAmount.StringFixed(2), status.Render(string(r.Status()))),
	) + "\n"
}
