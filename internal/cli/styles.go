package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/johanforsgren/mantella/internal/domain"
)

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	warningColor   = lipgloss.Color("#F59E0B")
	infoColor      = lipgloss.Color("#3B82F6")
	mutedColor     = lipgloss.Color("#6B7280")
	logColor       = lipgloss.Color("#E5E7EB")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	CollectiveStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	MainPageStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	PageStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	CountStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(infoColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	DiffAddStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	DiffDeleteStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	DiffContextStyle = lipgloss.NewStyle().
				Foreground(mutedColor)
)

func diffLineStyle(lineType domain.DiffLineType) lipgloss.Style {
	switch lineType {
	case domain.DiffAdd:
		return DiffAddStyle
	case domain.DiffDelete:
		return DiffDeleteStyle
	default:
		return DiffContextStyle
	}
}

// logLineStyle colors a buffered log entry by its tag.
func logLineStyle(message string) lipgloss.Style {
	switch {
	case strings.HasPrefix(message, "[ERROR]"):
		return lipgloss.NewStyle().Foreground(errorColor)
	case strings.HasPrefix(message, "[HTTP]"):
		return lipgloss.NewStyle().Foreground(infoColor)
	case strings.HasPrefix(message, "[FILE_WRITE]"):
		return lipgloss.NewStyle().Foreground(warningColor)
	case strings.HasPrefix(message, "[FILE_OPEN]"):
		return lipgloss.NewStyle().Foreground(secondaryColor)
	case strings.HasPrefix(message, "[DEBUG]"):
		return lipgloss.NewStyle().Foreground(mutedColor)
	default:
		return lipgloss.NewStyle().Foreground(logColor)
	}
}
