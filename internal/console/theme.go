package console

import "github.com/charmbracelet/lipgloss"

// Theme holds the lipgloss styles used by console output.
type Theme struct {
	Title  lipgloss.Style
	Prompt lipgloss.Style
	OK     lipgloss.Style
	Warn   lipgloss.Style
	Err    lipgloss.Style
	Dim    lipgloss.Style
	Accent lipgloss.Style
}

// DefaultTheme returns the green-accented console theme.
func DefaultTheme() *Theme {
	return &Theme{
		Title:  bold("#04B575").Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#04B575")).Padding(0, 2),
		Prompt: bold("#04B575"),
		OK:     fg("#04B575"),
		Warn:   bold("#FFA500"),
		Err:    bold("#FF0000"),
		Dim:    fg("#626262"),
		Accent: bold("#7D56F4"),
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}
