package notifications

import (
	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/ticks/internal/tui/state"
)

// maxBannerWidth wraps long server messages inside the banner
const maxBannerWidth = 60

// Render renders a notification banner based on severity level
func Render(severity Severity, message string) string {
	style := severity.style()

	headerText := style.icon + " " + style.title
	width := min(max(lipgloss.Width(headerText), lipgloss.Width(message)), maxBannerWidth)

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color(style.foreground)).
		Bold(true).
		Width(width).
		Render(headerText)

	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color(style.foreground)).
		Width(width).
		Render(message)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(style.borderForeground)).
		Background(lipgloss.Color(style.background)).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// RenderFromState renders a notification banner from a state.Notification
func RenderFromState(n state.Notification) string {
	return Render(FromLevel(n.Level), n.Message)
}

// RenderInline renders a compact single-line notification (for status bars)
func RenderInline(severity Severity, message string) string {
	style := severity.style()

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(style.foreground)).
		Background(lipgloss.Color(style.background)).
		Padding(0, 1).
		Render(style.icon + " " + message)
}

// RenderInlineFromState renders a compact inline notification from state
func RenderInlineFromState(n state.Notification) string {
	return RenderInline(FromLevel(n.Level), n.Message)
}

// Overlay floats the active notifications over base in the top-right corner.
// Before the window size is known it appends the newest one inline instead.
func Overlay(base string, notes *state.NotificationState) string {
	if !notes.HasAny() {
		return base
	}
	layers := notes.GetLayers(RenderFromState)
	if len(layers) == 0 {
		n, _ := notes.Latest()
		return base + "\n" + RenderInlineFromState(n)
	}
	return lipgloss.NewCanvas(append([]*lipgloss.Layer{lipgloss.NewLayer(base)}, layers...)...).Render()
}
