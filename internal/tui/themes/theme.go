// Package themes holds the lipgloss styles for the interactive form.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Label         lipgloss.Style
	FocusedLabel  lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Advice        lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
}

// newTheme builds a theme from a small palette.
func newTheme(primary, foreground, muted, border, success, warning, failure lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Muted:   muted,
		Border:  border,
		Error:   failure,
		Success: success,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1),
		Label: lipgloss.NewStyle().
			Foreground(foreground),
		FocusedLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Normal: lipgloss.NewStyle().
			Foreground(foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(foreground),
		Advice: lipgloss.NewStyle().
			Italic(true).
			Foreground(foreground).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(primary).
			PaddingLeft(1),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(warning).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(failure).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
	}
}

// Default is the default theme.
var Default = newTheme(
	lipgloss.Color("#7c3aed"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#10b981"),
	lipgloss.Color("#f59e0b"),
	lipgloss.Color("#ef4444"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#f9e2af"),
	lipgloss.Color("#f38ba8"),
)

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
