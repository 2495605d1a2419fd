// Package render formats explorer data for terminals with lipgloss.
package render

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#58A6FF")
	colorMuted   = lipgloss.Color("#8B949E")
	colorSuccess = lipgloss.Color("#3FB950")
	colorError   = lipgloss.Color("#F85149")
	colorWarning = lipgloss.Color("#D29922")
	colorStar    = lipgloss.Color("#E3B341")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	starStyle = lipgloss.NewStyle().
			Foreground(colorStar)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true).
			Underline(true)
)

// Error renders an error line.
func Error(message string) string {
	return errorStyle.Render("[ERROR]") + " " + message
}

// Warning renders a warning line.
func Warning(message string) string {
	return warningStyle.Render("[WARNING]") + " " + message
}

// Success renders a success line.
func Success(message string) string {
	return successStyle.Render("[SUCCESS]") + " " + message
}

// Subtle renders muted text.
func Subtle(message string) string {
	return mutedStyle.Render(message)
}
