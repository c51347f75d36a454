package ui

import (
	"dscmd/command"

	"github.com/charmbracelet/lipgloss"
)

// Palette, keyed to status severities where it matters.
var (
	colorBrand   = lipgloss.Color("33")
	colorFrame   = lipgloss.Color("240")
	colorText    = lipgloss.Color("252")
	colorFaint   = lipgloss.Color("245")
	colorSuccess = lipgloss.Color("86")
	colorWarning = lipgloss.Color("214")
	colorFailure = lipgloss.Color("196")
)

var (
	appStyle    = lipgloss.NewStyle().Padding(1, 2)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorFaint)
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFrame)

	// Saved commands and command kinds.
	normalStyle     = lipgloss.NewStyle().Foreground(colorText)
	selectedStyle   = normalStyle.Bold(true).Foreground(colorSuccess)
	cmdPreviewStyle = mutedStyle.Italic(true)

	outputTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFrame)

	helpStyle    = mutedStyle
	helpKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)

	// Parameter editor. Inputs share a frame; focus only recolours it.
	labelStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	inputStyle        = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorFrame).Padding(0, 1)
	focusedInputStyle = inputStyle.BorderForeground(colorBrand)

	errorStyle   = lipgloss.NewStyle().Foreground(colorFailure)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
)

// severityStyle colours a command status line.
func severityStyle(sev command.Severity) lipgloss.Style {
	switch sev {
	case command.SeverityFailure:
		return errorStyle
	case command.SeverityWarning:
		return warningStyle.Bold(false)
	default:
		return normalStyle
	}
}
