package checklist

import (
	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/ticks/internal/tui/theme"
)

type styles struct {
	title     lipgloss.Style
	progress  lipgloss.Style
	item      lipgloss.Style
	cursor    lipgloss.Style
	completed lipgloss.Style
	subtle    lipgloss.Style
	input     lipgloss.Style
}

// newStyles reads the theme at construction so config changes apply to new models
func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Highlight)),
		progress:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Completed)),
		item:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Normal)),
		cursor:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Selected)),
		completed: lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color(theme.Subtle)),
		subtle:    lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Subtle)),
		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Highlight)).
			Padding(0, 1),
	}
}
