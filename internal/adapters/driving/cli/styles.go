package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// Palette for the run summary.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6C7086") // Medium gray
	colorSuccess = lipgloss.Color("#A6E3A1") // Green
	colorWarning = lipgloss.Color("#F9E2AF") // Yellow
	colorError   = lipgloss.Color("#F38BA8") // Red
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
)

// statusStyle colours a run status.
func statusStyle(status domain.RunStatus) lipgloss.Style {
	switch status {
	case domain.RunCompleted:
		return successStyle
	case domain.RunCancelled:
		return warningStyle
	default:
		return errorStyle
	}
}
