package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rpoptimizer/model"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")

	// Latest message / preview text
	MessageStyle = lipgloss.NewStyle().
			Foreground(accentColor)
	// NO .Background() = transparent!

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	FocusedTitleStyle = lipgloss.NewStyle().
				Foreground(warningColor).
				Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1)

	FocusedPaneStyle = PaneStyle.
				BorderForeground(accentColor)
)

// levelStyle colors a notification by severity.
func levelStyle(level model.Level) lipgloss.Style {
	switch level {
	case model.LevelSuccess:
		return lipgloss.NewStyle().Foreground(successColor)
	case model.LevelWarning:
		return lipgloss.NewStyle().Foreground(warningColor)
	case model.LevelError:
		return lipgloss.NewStyle().Foreground(dangerColor).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(accentColor)
	}
}

// FormatFooter formats a footer string with alternating keys and descriptions.
// Usage: FormatFooter("^E", "Extract", "^R", "Rewrite")
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
		}
	}
	return strings.Join(result, "  ")
}
