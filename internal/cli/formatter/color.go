package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusStyle maps a session status to its color.
func StatusStyle(s domain.SessionStatus) lipgloss.Style {
	switch s {
	case domain.StatusInProgress:
		return StyleGreen
	case domain.StatusPaused:
		return StyleYellow
	case domain.StatusCompleted:
		return StyleBlue
	default:
		return StyleDim
	}
}

// StatusLabel returns the human label for a status, e.g. "IN PROGRESS".
func StatusLabel(s domain.SessionStatus) string {
	switch s {
	case domain.StatusInProgress:
		return "IN PROGRESS"
	case domain.StatusPaused:
		return "PAUSED"
	case domain.StatusCompleted:
		return "COMPLETED"
	case domain.StatusNotStarted:
		return "NOT STARTED"
	default:
		return strings.ToUpper(string(s))
	}
}

// StatusBadge renders a colored "● LABEL" indicator.
func StatusBadge(s domain.SessionStatus) string {
	return StatusStyle(s).Render("● " + StatusLabel(s))
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

func Warn(text string) string {
	return StyleRed.Render(text)
}
