package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	gaugeFullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	gaugeLowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	gaugeEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	statValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	eventBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)
