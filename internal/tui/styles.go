package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("39")
	colorMuted   = lipgloss.Color("245")

	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(colorPrimary).Bold(true)
	noItemsStyle      = lipgloss.NewStyle().Foreground(colorMuted).PaddingLeft(2)
)
