// Package ui provides the console styling for the codeforge CLI.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic colors
	successColor = lipgloss.Color("#8BC34A")
	failureColor = lipgloss.Color("#e53935")
	accentColor  = lipgloss.Color("#2196F3")
	mutedColor   = lipgloss.Color("#6c7a92")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Padding(0, 1).
			Border(lipgloss.DoubleBorder())

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	successStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(failureColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f2f2f2")).
			Background(lipgloss.Color("#1a2536")).
			Padding(0, 1)
)
