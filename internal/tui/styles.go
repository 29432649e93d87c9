// Package tui holds the shared terminal styles for modulus.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#5A67D8", Dark: "#7C3AED"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#38B2AC", Dark: "#4FD1C5"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#38A169", Dark: "#48BB78"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#D69E2E", Dark: "#F6E05E"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#E53E3E", Dark: "#FC8181"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#718096", Dark: "#A0AEC0"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#1A202C", Dark: "#F7FAFC"}
	ColorBorder    = lipgloss.AdaptiveColor{Light: "#CBD5E0", Dark: "#4A5568"}
)

// Base styles
var (
	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// SubtitleStyle for section headers
	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	// LabelStyle for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// FocusedLabelStyle for the field being edited
	FocusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary)

	// ValueStyle for values
	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)

	// ResultStyle frames the predicted modulus
	ResultStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Padding(0, 2)

	// ErrorPanelStyle frames prediction errors
	ErrorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Padding(0, 2)
)

// Status indicator styles
var (
	StatusReady    = SuccessStyle.Render("●")
	StatusNotReady = WarningStyle.Render("●")
)

// IsTTY returns true if both stdin and stdout are terminals
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// FormatKeyValue formats a key-value pair
func FormatKeyValue(key, value string) string {
	return LabelStyle.Bold(true).Render(key+":") + " " + ValueStyle.Render(value)
}
