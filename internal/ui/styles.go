package ui

import "github.com/charmbracelet/lipgloss"

var (
	UserPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	ContextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	ErrorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	StatusThinkingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	StatusExecutingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	StatusDoneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	StatusFailedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
