package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/ticks/internal/cache"
	"github.com/thenoetrevino/ticks/internal/models"
	"github.com/thenoetrevino/ticks/internal/tui/notifications"
	"github.com/thenoetrevino/ticks/internal/tui/state"
	"github.com/thenoetrevino/ticks/internal/tui/theme"
)

// IssueSource is the part of the unassigned cache the model reads from
type IssueSource interface {
	Subscribe(key models.WorkspaceUserKey) (<-chan cache.Result[[]models.Issue], func())
	Invalidate(key models.WorkspaceUserKey)
}

type issuesMsg cache.Result[[]models.Issue]

type claimDoneMsg struct {
	err error
}

// UnassignedModel lists unassigned work items; enter claims the selected one.
type UnassignedModel struct {
	ctrl          *UnassignedController
	source        IssueSource
	notifications *state.NotificationState

	results <-chan cache.Result[[]models.Issue]
	cancel  func()

	issues  []models.Issue
	loading bool
	err     error
	cursor  int
}

// NewUnassignedModel creates the widget model
func NewUnassignedModel(ctrl *UnassignedController, source IssueSource, notes *state.NotificationState) UnassignedModel {
	if notes == nil {
		notes = state.NewNotificationState()
	}
	results, cancel := source.Subscribe(ctrl.Key())
	return UnassignedModel{
		ctrl:          ctrl,
		source:        source,
		notifications: notes,
		results:       results,
		cancel:        cancel,
		loading:       true,
	}
}

// Init starts listening for list updates
func (m UnassignedModel) Init() tea.Cmd {
	return waitForIssues(m.results)
}

func waitForIssues(results <-chan cache.Result[[]models.Issue]) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return issuesMsg(res)
	}
}

// Update handles messages
func (m UnassignedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.notifications.SetWindowSize(msg.Width, msg.Height)
	case issuesMsg:
		m.loading = msg.IsLoading && !msg.HasValue
		m.err = msg.Err
		if msg.HasValue {
			m.issues = msg.Value
			if m.cursor >= len(m.issues) {
				m.cursor = max(len(m.issues)-1, 0)
			}
		}
		return m, waitForIssues(m.results)
	case claimDoneMsg:
		return m, nil
	case tea.KeyPressMsg:
		m.notifications.Clear()
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			m.ctrl.Close()
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.issues)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.source.Invalidate(m.ctrl.Key())
		case "enter":
			if len(m.issues) == 0 || m.ctrl.ClaimInFlight() != "" {
				return m, nil
			}
			issue := m.issues[m.cursor]
			return m, func() tea.Msg {
				return claimDoneMsg{err: m.ctrl.Claim(context.Background(), issue)}
			}
		}
	}
	return m, nil
}

// View renders the widget
func (m UnassignedModel) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.Content = notifications.Overlay(m.render(), m.notifications)
	return view
}

func (m UnassignedModel) render() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Highlight))
	subtle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Subtle))
	selected := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Selected))

	var b strings.Builder
	b.WriteString(title.Render("Unassigned work items"))
	b.WriteString("\n\n")

	switch {
	case m.issues == nil && m.err != nil:
		b.WriteString(subtle.Render("Failed to load work items: " + m.err.Error()))
		b.WriteString("\n")
	case m.issues == nil && m.loading:
		b.WriteString(subtle.Render("Loading..."))
		b.WriteString("\n")
	case len(m.issues) == 0:
		b.WriteString(subtle.Render("Everything has an owner"))
		b.WriteString("\n")
	}

	claiming := m.ctrl.ClaimInFlight()
	for i, issue := range m.issues {
		line := fmt.Sprintf("#%d %s", issue.SequenceID, issue.Name)
		if issue.ID == claiming {
			line += subtle.Render(" (volunteering...)")
		}
		if i == m.cursor {
			b.WriteString(selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + subtle.Render("enter: volunteer  r: refresh  q: quit"))
	return b.String()
}
