// Package styles holds the lipgloss styles used by human-readable command output.
package styles

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/models"
)

var (
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	DoneStyle     lipgloss.Style // completed item names
	PendingStyle  lipgloss.Style
	ProgressStyle lipgloss.Style

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
)

func init() {
	Init(config.DefaultColorScheme())
}

// Init initializes all CLI styles with the given color scheme
func Init(colors config.ColorScheme) {
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Accent))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Subtle))

	DoneStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Completed)).
		Strikethrough(true)

	PendingStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Normal))

	ProgressStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Completed))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.InfoFg)).
		Background(lipgloss.Color(colors.InfoBg)).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.ErrorFg)).
		Background(lipgloss.Color(colors.ErrorBg)).
		Padding(0, 1)

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.WarningFg)).
		Background(lipgloss.Color(colors.WarningBg)).
		Padding(0, 1)
}

// Checkbox renders "[x]" or "[ ]"
func Checkbox(done bool) string {
	if done {
		return ProgressStyle.Render("[x]")
	}
	return SubtitleStyle.Render("[ ]")
}

// ItemLine renders one checklist row: position, checkbox, name and assignee
func ItemLine(pos int, item models.ChecklistItem) string {
	name := PendingStyle.Render(item.Name)
	if item.IsCompleted {
		name = DoneStyle.Render(item.Name)
	}
	line := SubtitleStyle.Render(fmt.Sprintf("%3d.", pos)) + " " + Checkbox(item.IsCompleted) + " " + name
	if item.AssigneeDetail != nil {
		line += " " + SubtitleStyle.Render("@"+item.AssigneeDetail.DisplayName)
	} else if id := item.AssigneeID(); id != "" {
		line += " " + SubtitleStyle.Render("@"+id)
	}
	return line
}

// Progress renders "done/total (pct%)"
func Progress(p models.Progress) string {
	return ProgressStyle.Render(p.String())
}
