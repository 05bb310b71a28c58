package notifications

import (
	"strings"
	"testing"

	"github.com/thenoetrevino/ticks/internal/tui/state"
)

func TestFromLevel(t *testing.T) {
	tests := []struct {
		level state.NotificationLevel
		want  Severity
	}{
		{state.LevelInfo, Info},
		{state.LevelWarning, Warning},
		{state.LevelError, Error},
	}
	for _, tt := range tests {
		if got := FromLevel(tt.level); got != tt.want {
			t.Errorf("FromLevel(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestRenderFromState_ShowsTitleAndMessage(t *testing.T) {
	out := RenderFromState(state.Notification{Level: state.LevelError, Message: "name: This field may not be blank."})

	if !strings.Contains(out, "Error") {
		t.Errorf("Expected error title in %q", out)
	}
	if !strings.Contains(out, "may not be blank") {
		t.Errorf("Expected message in %q", out)
	}
}

func TestRenderInline_SingleLine(t *testing.T) {
	out := RenderInline(Info, "You've volunteered for this work item!")
	if strings.Contains(out, "\n") {
		t.Errorf("Expected a single line, got %q", out)
	}
}

func TestOverlay(t *testing.T) {
	base := "Checklist\n\n  [ ] Write docs\n  [ ] Cut release\n\nhelp"

	t.Run("no notifications", func(t *testing.T) {
		if got := Overlay(base, state.NewNotificationState()); got != base {
			t.Errorf("Expected base unchanged, got %q", got)
		}
	})

	t.Run("inline before the window size is known", func(t *testing.T) {
		notes := state.NewNotificationState()
		notes.Notify("info", "Saved")
		got := Overlay(base, notes)
		if !strings.HasPrefix(got, base+"\n") || !strings.Contains(got, "Saved") {
			t.Errorf("Expected inline notification after base, got %q", got)
		}
	})

	t.Run("floating once sized", func(t *testing.T) {
		notes := state.NewNotificationState()
		notes.SetWindowSize(100, 30)
		notes.Notify("error", "Server went away")
		got := Overlay(base, notes)
		if !strings.Contains(got, "Server went away") {
			t.Errorf("Expected notification in canvas, got %q", got)
		}
		if !strings.Contains(got, "Write docs") {
			t.Errorf("Expected base content kept, got %q", got)
		}
	})
}
