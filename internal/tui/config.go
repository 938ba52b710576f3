package tui

import (
	"io"

	"github.com/Veraticus/ponder/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Input     io.Reader
	Output    io.Writer
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithIO replaces the terminal input and output.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
	}
}

// WithAltScreen runs the form in the terminal's alternate screen.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
