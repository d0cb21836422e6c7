package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7D56F4")
	mutedColor   = lipgloss.Color("#6C6C6C")
	errorColor   = lipgloss.Color("#FF5F87")
	successColor = lipgloss.Color("#04B575")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	headlineStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().Foreground(errorColor)

	successStyle = lipgloss.NewStyle().Foreground(successColor)

	cursorStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	selectedStyle = lipgloss.NewStyle().Foreground(successColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	cardTitleStyle = lipgloss.NewStyle().Bold(true)

	detailKeyStyle = lipgloss.NewStyle().Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)

	appStyle = lipgloss.NewStyle().Padding(1, 2)
)
