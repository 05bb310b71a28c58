package state

import (
	"fmt"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]NotificationLevel{
		"info":    LevelInfo,
		"warning": LevelWarning,
		"WARN":    LevelWarning,
		"error":   LevelError,
		"other":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNotificationState_KeepsNewest(t *testing.T) {
	s := NewNotificationState()
	for i := range maxNotifications + 2 {
		s.Notify("info", fmt.Sprintf("n%d", i))
	}

	all := s.All()
	if len(all) != maxNotifications {
		t.Fatalf("Expected %d notifications, got %d", maxNotifications, len(all))
	}
	if all[0].Message != "n2" {
		t.Errorf("Expected oldest kept to be n2, got %s", all[0].Message)
	}
	latest, ok := s.Latest()
	if !ok || latest.Message != fmt.Sprintf("n%d", maxNotifications+1) {
		t.Errorf("Unexpected latest %+v", latest)
	}
}

func TestNotificationState_ClearLevel(t *testing.T) {
	s := NewNotificationState()
	s.Notify("error", "boom")
	s.Notify("info", "ok")

	s.ClearLevel(LevelError)
	all := s.All()
	if len(all) != 1 || all[0].Level != LevelInfo {
		t.Errorf("Expected only the info notification, got %+v", all)
	}

	s.Clear()
	if s.HasAny() {
		t.Error("Expected no notifications after Clear")
	}
}

func TestNotificationState_ConcurrentNotify(t *testing.T) {
	s := NewNotificationState()
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Notify("warning", "w")
		}()
	}
	wg.Wait()

	if len(s.All()) != maxNotifications {
		t.Errorf("Expected %d notifications, got %d", maxNotifications, len(s.All()))
	}
}

func TestGetLayers_NeedsWindowSize(t *testing.T) {
	s := NewNotificationState()
	s.Notify("info", "hello")
	render := func(n Notification) string { return n.Message }

	if layers := s.GetLayers(render); len(layers) != 0 {
		t.Errorf("Expected no layers before the window size is known, got %d", len(layers))
	}

	s.SetWindowSize(80, 24)
	if layers := s.GetLayers(render); len(layers) != 1 {
		t.Errorf("Expected one layer, got %d", len(layers))
	}
}

func TestNotifyFunc_TracksConnection(t *testing.T) {
	conn := NewConnectionState(Connected)
	notes := NewNotificationState()
	notify := NotifyFunc(conn, notes)

	notify("warning", "Connection lost, reconnecting")
	if conn.Status() != Reconnecting {
		t.Errorf("Expected Reconnecting, got %s", conn.Status())
	}
	notify("info", "Reconnected")
	if conn.Status() != Connected {
		t.Errorf("Expected Connected, got %s", conn.Status())
	}
	notify("error", "Gave up")
	if conn.Status() != Disconnected {
		t.Errorf("Expected Disconnected, got %s", conn.Status())
	}
	all := notes.All()
	if len(all) != 2 {
		t.Fatalf("Expected the warning cleared on reconnect, got %v", all)
	}
	if all[0].Message != "Reconnected" || all[1].Level != LevelError {
		t.Errorf("Unexpected notifications %v", all)
	}
}
