package checklist

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/tui/state"
)

// ============================================================================
// Test Helpers
// ============================================================================

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg(tea.Key{Code: tea.KeyEnter})
	case "esc":
		return tea.KeyPressMsg(tea.Key{Code: tea.KeyEscape})
	case "space":
		return tea.KeyPressMsg(tea.Key{Code: tea.KeySpace, Text: " "})
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg(tea.Key{Code: r, Text: s})
}

// setupModel builds a model and feeds it the first loaded snapshot
func setupModel(t *testing.T, names ...string) (Model, *fixture) {
	t.Helper()
	f := setupController(t, names...)
	m := NewModel(f.ctrl, f.store, config.DefaultKeyMappings(), "user-1", state.NewNotificationState())
	t.Cleanup(m.cancel)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)
	return loadSnapshot(t, m, f), f
}

// loadSnapshot waits for the cache and delivers its current result
func loadSnapshot(t *testing.T, m Model, f *fixture) Model {
	t.Helper()
	f.store.Wait()
	updated, _ := m.Update(snapshotMsg(f.store.Read(testKey)))
	return updated.(Model)
}

// press sends a key and runs any command it returns, feeding the result back
func press(t *testing.T, m Model, key string) Model {
	t.Helper()
	updated, cmd := m.Update(keyPress(key))
	m = updated.(Model)
	if cmd == nil {
		return m
	}

	// Focus commands may block on a cursor blink; only command results matter.
	results := make(chan tea.Msg, 1)
	go func() { results <- cmd() }()
	select {
	case msg := <-results:
		if done, ok := msg.(commandDoneMsg); ok {
			updated, _ = m.Update(done)
			m = updated.(Model)
		}
	case <-time.After(2 * time.Second):
	}
	return m
}

// ============================================================================
// Tests
// ============================================================================

func TestModel_RendersItemsAndProgress(t *testing.T) {
	m, _ := setupModel(t, "Write docs", "Cut release")

	out := m.View().Content
	if !strings.Contains(out, "Write docs") || !strings.Contains(out, "Cut release") {
		t.Errorf("Expected both items in view:\n%s", out)
	}
	if !strings.Contains(out, "0/2 (0%)") {
		t.Errorf("Expected progress in view:\n%s", out)
	}
}

func TestModel_ShowsConnectionStatus(t *testing.T) {
	m, _ := setupModel(t, "Write docs")
	conn := state.NewConnectionState(state.Connected)
	m = m.WithConnection(conn)

	if strings.Contains(m.View().Content, "[Reconnecting]") {
		t.Error("Expected no status while connected")
	}
	state.NotifyFunc(conn, nil)("warning", "connection lost")
	if !strings.Contains(m.View().Content, "[Reconnecting]") {
		t.Errorf("Expected reconnecting status in view:\n%s", m.View().Content)
	}
}

func TestModel_NotificationFloatsUntilNextKey(t *testing.T) {
	m, _ := setupModel(t, "Write docs", "Cut release")
	m.notifications.Notify("error", "Server went away")

	if !strings.Contains(m.View().Content, "Server went away") {
		t.Fatalf("Expected notification in view:\n%s", m.View().Content)
	}

	m = press(t, m, "j")
	if strings.Contains(m.View().Content, "Server went away") {
		t.Errorf("Expected key press to dismiss the notification:\n%s", m.View().Content)
	}
	if !strings.Contains(m.View().Content, "Write docs") {
		t.Errorf("Expected items to stay visible:\n%s", m.View().Content)
	}
}

func TestModel_SpaceTogglesSelectedItem(t *testing.T) {
	m, f := setupModel(t, "Write docs", "Cut release")

	m = press(t, m, "j")
	m = press(t, m, "space")

	calls := f.transport.Calls()
	last := calls[len(calls)-1]
	if last.Method != "update" || last.ItemID != f.items[1].ID {
		t.Fatalf("Expected toggle of the second item, got %+v", last)
	}
	if last.Update.IsCompleted == nil || !*last.Update.IsCompleted {
		t.Errorf("Expected is_completed=true, got %+v", last.Update)
	}

	m = loadSnapshot(t, m, f)
	if !strings.Contains(m.View().Content, "1/2 (50%)") {
		t.Errorf("Expected refreshed progress:\n%s", m.View().Content)
	}
}

func TestModel_AddItemFlow(t *testing.T) {
	m, f := setupModel(t)

	m = press(t, m, "a")
	if m.mode != creating {
		t.Fatalf("Expected creating mode, got %v", m.mode)
	}
	m.input.SetValue("Book venue")
	m = press(t, m, "enter")

	if f.transport.CallCount("create") != 1 {
		t.Fatalf("Expected one create, got %d", f.transport.CallCount("create"))
	}
	if m.input.Value() != "" {
		t.Errorf("Expected input cleared after create, got %q", m.input.Value())
	}

	m = loadSnapshot(t, m, f)
	if !strings.Contains(m.View().Content, "Book venue") {
		t.Errorf("Expected new item after refetch:\n%s", m.View().Content)
	}
}

func TestModel_EscapeCancelsEdit(t *testing.T) {
	m, f := setupModel(t, "Write docs")

	m = press(t, m, "e")
	if m.mode != editing || !f.ctrl.State().IsEditing(f.items[0].ID) {
		t.Fatalf("Expected edit session, got mode %v state %+v", m.mode, f.ctrl.State())
	}
	m.input.SetValue("Rewrite docs")
	m = press(t, m, "esc")

	if m.mode != browsing || f.ctrl.State().EditingItemID != "" {
		t.Errorf("Expected edit cancelled, got mode %v state %+v", m.mode, f.ctrl.State())
	}
	if f.transport.MutationCount() != 0 {
		t.Error("Expected no dispatch on cancel")
	}
}

func TestModel_EnterCommitsRename(t *testing.T) {
	m, f := setupModel(t, "Write docs")

	m = press(t, m, "e")
	m.input.SetValue("Rewrite docs")
	m = press(t, m, "enter")

	if m.mode != browsing {
		t.Errorf("Expected browsing mode after commit, got %v", m.mode)
	}
	if f.transport.CallCount("update") != 1 {
		t.Errorf("Expected one rename, got %d", f.transport.CallCount("update"))
	}
}

func TestModel_MoveDownReorders(t *testing.T) {
	m, f := setupModel(t, "a", "b", "c")

	m = press(t, m, "J")

	calls := f.transport.Calls()
	last := calls[len(calls)-1]
	if last.Update == nil || last.Update.SortOrder == nil {
		t.Fatalf("Expected a reorder, got %+v", last)
	}
	if *last.Update.SortOrder <= f.items[1].SortOrder || *last.Update.SortOrder >= f.items[2].SortOrder {
		t.Errorf("Expected sort order between b and c, got %v", *last.Update.SortOrder)
	}
	if m.cursor != 1 {
		t.Errorf("Expected cursor to follow the item, got %d", m.cursor)
	}
}

func TestModel_DisabledIgnoresAdd(t *testing.T) {
	m, f := setupModel(t, "a")
	f.ctrl.SetDisabled(true)

	m = press(t, m, "a")
	if m.mode != browsing {
		t.Errorf("Expected to stay in browsing mode, got %v", m.mode)
	}
}
