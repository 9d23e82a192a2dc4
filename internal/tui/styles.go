package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/interviewer-dev/interviewer/internal/api"
)

// Color constants.
const (
	primaryColor   = "#7C3AED" // Purple
	secondaryColor = "#10B981" // Green
	warningColor   = "#F59E0B" // Amber
	errorColor     = "#EF4444" // Red
	dimColor       = "#6B7280" // Gray
)

// Style variables for consistent TUI rendering.
var (
	// BoxStyle provides a rounded border box with primary color.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Padding(1, 2)

	// TitleStyle renders titles in primary color with bold.
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// QuestionStyle renders question text.
	QuestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB")).
			Bold(true)

	// SelectedStyle highlights selected items in primary color.
	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// NormalStyle renders unselected list items.
	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	// DimStyle renders dim/muted text.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))

	// SuccessStyle renders success messages in green.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor))

	// ErrorStyle renders error messages in red.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor))

	// WarningStyle renders warning messages in amber.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(warningColor))

	// ProgressFullStyle renders filled progress indicators.
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(secondaryColor))

	// ProgressEmptyStyle renders empty progress indicators.
	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(dimColor))
)

// levelBadges is indexed by api.Level and covers every level, including an
// unset one.
var levelBadges = [...]lipgloss.Style{
	api.LevelUnset: badge("#374151", "#E5E7EB"),
	api.Junior:     badge("#065F46", "#D1FAE5"),
	api.Middle:     badge("#92400E", "#FEF3C7"),
	api.Senior:     badge("#991B1B", "#FEE2E2"),
}

func badge(fg, bg string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1)
}

// LevelStyle returns the badge style of a difficulty level.
func LevelStyle(l api.Level) lipgloss.Style {
	if !l.Valid() {
		return levelBadges[api.LevelUnset]
	}
	return levelBadges[l]
}

// LevelBadge renders label with the badge style of l.
func LevelBadge(l api.Level, label string) string {
	return LevelStyle(l).Render(label)
}

// ProgressBar renders a width-cell bar for current of total.
func ProgressBar(current, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := current * width / total
	if filled > width {
		filled = width
	}
	var b strings.Builder
	b.WriteString(ProgressFullStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(ProgressEmptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String()
}
