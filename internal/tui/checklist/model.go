package checklist

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/ticks/internal/cache"
	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/models"
	"github.com/thenoetrevino/ticks/internal/tui/notifications"
	"github.com/thenoetrevino/ticks/internal/tui/state"
)

// SnapshotSource is the part of the checklist cache the model reads from
type SnapshotSource interface {
	Subscribe(key models.ChecklistKey) (<-chan cache.Result[*models.Snapshot], func())
	Invalidate(key models.ChecklistKey)
}

type mode int

const (
	browsing mode = iota
	creating
	editing
)

// snapshotMsg carries a cache result for the model's checklist
type snapshotMsg cache.Result[*models.Snapshot]

// sourceClosedMsg is sent when the cache subscription ends
type sourceClosedMsg struct{}

// commandDoneMsg is sent when a controller command returns
type commandDoneMsg struct {
	err error
}

// Model renders one checklist and maps keys to controller commands.
type Model struct {
	ctrl          *Controller
	source        SnapshotSource
	keys          config.KeyMappings
	userID        string
	notifications *state.NotificationState
	conn          *state.ConnectionState
	styles        styles

	results <-chan cache.Result[*models.Snapshot]
	cancel  func()

	snapshot *models.Snapshot
	loading  bool
	loadErr  error

	mode   mode
	cursor int
	input  textinput.Model
	width  int
	height int
}

// NewModel creates the checklist model. userID is used by the assign-to-me key.
func NewModel(ctrl *Controller, source SnapshotSource, keys config.KeyMappings, userID string, notes *state.NotificationState) Model {
	if notes == nil {
		notes = state.NewNotificationState()
	}
	results, cancel := source.Subscribe(ctrl.Key())

	input := textinput.New()
	input.CharLimit = models.MaxChecklistItemNameLength * 2
	input.Placeholder = "New checklist item"

	return Model{
		ctrl:          ctrl,
		source:        source,
		keys:          keys,
		userID:        userID,
		notifications: notes,
		styles:        newStyles(),
		results:       results,
		cancel:        cancel,
		loading:       true,
		input:         input,
	}
}

// WithConnection shows the live-update status in the title while it is not connected
func (m Model) WithConnection(conn *state.ConnectionState) Model {
	m.conn = conn
	return m
}

// Init starts listening for checklist snapshots
func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.results)
}

func waitForSnapshot(results <-chan cache.Result[*models.Snapshot]) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return sourceClosedMsg{}
		}
		return snapshotMsg(res)
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.notifications.SetWindowSize(msg.Width, msg.Height)
		m.input.SetWidth(max(msg.Width-8, 10))
		return m, nil

	case snapshotMsg:
		m.loading = msg.IsLoading && !msg.HasValue
		m.loadErr = msg.Err
		if msg.HasValue {
			m.snapshot = msg.Value
			m.clampCursor()
		}
		return m, waitForSnapshot(m.results)

	case sourceClosedMsg:
		return m, nil

	case commandDoneMsg:
		return m.afterCommand(), nil

	case tea.KeyPressMsg:
		switch m.mode {
		case creating:
			return m.handleCreating(msg)
		case editing:
			return m.handleEditing(msg)
		default:
			return m.handleBrowsing(msg)
		}
	}
	return m, nil
}

func (m Model) handleBrowsing(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.notifications.Clear()
	items := m.items()
	key := msg.String()
	if key == " " {
		key = "space"
	}

	switch key {
	case m.keys.Quit, "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case m.keys.NextItem, "down":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
		return m, nil
	case m.keys.PrevItem, "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case m.keys.Refresh:
		m.source.Invalidate(m.ctrl.Key())
		return m, nil
	case m.keys.AddItem:
		if m.ctrl.State().Disabled {
			return m, nil
		}
		m.mode = creating
		m.input.SetValue(m.ctrl.State().CreationBuffer)
		m.input.Placeholder = "New checklist item"
		return m, m.input.Focus()
	}

	if len(items) == 0 {
		return m, nil
	}
	item := items[m.cursor]

	switch key {
	case m.keys.EditItem:
		if err := m.ctrl.BeginEdit(item); err != nil {
			return m, nil
		}
		m.mode = editing
		m.input.SetValue(item.Name)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case m.keys.ToggleItem:
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Toggle(ctx, item) })
	case m.keys.DeleteItem:
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Delete(ctx, item.ID) })
	case m.keys.AssignToMe:
		if m.userID == "" {
			m.notifications.Notify("warning", "Set user.id in the config to assign items to yourself")
			return m, nil
		}
		userID := m.userID
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Reassign(ctx, item, &userID) })
	case m.keys.UnassignItem:
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Reassign(ctx, item, nil) })
	case m.keys.MoveItemUp:
		return m.move(items, -1)
	case m.keys.MoveItemDown:
		return m.move(items, 1)
	}
	return m, nil
}

func (m Model) move(items []models.ChecklistItem, delta int) (tea.Model, tea.Cmd) {
	order, ok := models.SortOrderForMove(items, m.cursor, m.cursor+delta)
	if !ok {
		return m, nil
	}
	item := items[m.cursor]
	m.cursor += delta
	return m, m.run(func(ctx context.Context) error { return m.ctrl.Move(ctx, item, order) })
}

func (m Model) handleCreating(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.SetCreationBuffer(m.input.Value())
		m.mode = browsing
		m.input.Blur()
		return m, nil
	case "enter":
		m.ctrl.SetCreationBuffer(m.input.Value())
		return m, m.run(func(ctx context.Context) error {
			_, err := m.ctrl.SubmitCreate(ctx)
			return err
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleEditing(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.CancelEdit()
		m.mode = browsing
		m.input.Blur()
		return m, nil
	case "enter":
		m.ctrl.SetEditBuffer(m.input.Value())
		return m, m.run(m.ctrl.CommitEdit)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// afterCommand resyncs the input with the controller once a command returns
func (m Model) afterCommand() Model {
	s := m.ctrl.State()
	switch m.mode {
	case creating:
		if !s.CreationInFlight && s.CreationBuffer == "" {
			m.input.SetValue("")
		}
	case editing:
		if s.EditingItemID == "" {
			m.mode = browsing
			m.input.Blur()
		}
	}
	return m
}

// run dispatches a controller command off the update loop. Errors are
// already reported through the notifier.
func (m Model) run(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return commandDoneMsg{err: op(context.Background())}
	}
}

func (m Model) items() []models.ChecklistItem {
	if m.snapshot == nil {
		return nil
	}
	return m.snapshot.Items
}

func (m *Model) clampCursor() {
	if n := len(m.items()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// View renders the checklist
func (m Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.Content = notifications.Overlay(m.render(), m.notifications)
	return view
}

func (m Model) render() string {
	s := m.ctrl.State()
	var b strings.Builder

	title := "Checklist " + m.ctrl.Key().String()
	if m.snapshot != nil {
		title += "  " + m.styles.progress.Render(m.snapshot.Progress.String())
	}
	if m.conn != nil && m.conn.Status() != state.Connected {
		title += "  " + m.styles.subtle.Render("["+m.conn.Status().String()+"]")
	}
	b.WriteString(m.styles.title.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.snapshot == nil && m.loadErr != nil:
		b.WriteString(m.styles.subtle.Render("Failed to load checklist: " + m.loadErr.Error()))
		b.WriteString("\n")
	case m.snapshot == nil && m.loading:
		b.WriteString(m.styles.subtle.Render("Loading..."))
		b.WriteString("\n")
	case len(m.items()) == 0:
		b.WriteString(m.styles.subtle.Render("No checklist items yet"))
		b.WriteString("\n")
	}

	for i, item := range m.items() {
		b.WriteString(m.renderItem(i, item, s))
		b.WriteString("\n")
	}

	if m.mode == creating {
		label := "Add item"
		if s.CreationInFlight {
			label += " (saving...)"
		}
		b.WriteString("\n" + m.styles.input.Render(label+"\n"+m.input.View()) + "\n")
	}

	b.WriteString("\n" + m.styles.subtle.Render(m.help(s)))
	return b.String()
}

func (m Model) renderItem(i int, item models.ChecklistItem, s State) string {
	box := "[ ]"
	if item.IsCompleted {
		box = "[x]"
	}

	if m.mode == editing && s.IsEditing(item.ID) {
		return "  " + box + " " + m.input.View()
	}

	name := m.styles.item.Render(item.Name)
	if item.IsCompleted {
		name = m.styles.completed.Render(item.Name)
	}

	line := box + " " + name
	if assignee := describeAssignee(item); assignee != "" {
		line += m.styles.subtle.Render(" @" + assignee)
	}
	if s.IsPending(item.ID) {
		line += m.styles.subtle.Render(" ...")
	}

	if i == m.cursor && m.mode == browsing {
		return m.styles.cursor.Render("> ") + line
	}
	return "  " + line
}

func describeAssignee(item models.ChecklistItem) string {
	if item.AssigneeDetail != nil && item.AssigneeDetail.DisplayName != "" {
		return item.AssigneeDetail.DisplayName
	}
	return item.AssigneeID()
}

func (m Model) help(s State) string {
	switch {
	case m.mode == creating || m.mode == editing:
		return "enter: save  esc: cancel"
	case s.Disabled:
		return fmt.Sprintf("%s/%s: move  %s: refresh  %s: quit", m.keys.NextItem, m.keys.PrevItem, m.keys.Refresh, m.keys.Quit)
	default:
		return fmt.Sprintf("%s: add  %s: edit  %s: toggle  %s: delete  %s: assign me  %s: unassign  %s/%s: reorder  %s: quit",
			m.keys.AddItem, m.keys.EditItem, m.keys.ToggleItem, m.keys.DeleteItem,
			m.keys.AssignToMe, m.keys.UnassignItem, m.keys.MoveItemUp, m.keys.MoveItemDown, m.keys.Quit)
	}
}
