package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/thenoetrevino/ticks/internal/models"
)

func TestChecklistChanged_RoundTripsKey(t *testing.T) {
	key := models.ChecklistKey{WorkspaceSlug: "acme", ProjectID: "p1", IssueID: "i1"}

	event := ChecklistChanged(key)
	if event.Type != EventChecklistChanged || event.ChecklistKey() != key {
		t.Errorf("Unexpected event %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
}

func TestSubscribeMessage_Matches(t *testing.T) {
	tests := []struct {
		name  string
		sub   string
		event string
		want  bool
	}{
		{"all workspaces", "", "acme", true},
		{"same workspace", "acme", "acme", true},
		{"other workspace", "acme", "globex", false},
		{"unscoped event", "acme", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubscribeMessage{WorkspaceSlug: tt.sub}.Matches(Event{WorkspaceSlug: tt.event})
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMessage_WireFormat(t *testing.T) {
	msg := Message{
		Version: ProtocolVersion,
		Type:    "event",
		Event:   &Event{Type: EventChecklistChanged, WorkspaceSlug: "acme", IssueID: "i1", SequenceID: 7},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	event, ok := raw["event"].(map[string]any)
	if !ok {
		t.Fatalf("Expected nested event object, got %s", data)
	}
	if event["type"] != "checklist_changed" || event["workspace"] != "acme" || event["sequence_id"] != float64(7) {
		t.Errorf("Unexpected event encoding %s", data)
	}
	if _, present := raw["subscribe"]; present {
		t.Errorf("Expected subscribe to be omitted, got %s", data)
	}
}

func TestBatchKey_DistinguishesScope(t *testing.T) {
	a := Event{Type: EventChecklistChanged, WorkspaceSlug: "acme", IssueID: "i1"}
	b := Event{Type: EventIssueChanged, WorkspaceSlug: "acme", IssueID: "i1"}
	if a.batchKey() == b.batchKey() {
		t.Error("Expected different event types to batch separately")
	}
	if a.batchKey() != (Event{Type: EventChecklistChanged, WorkspaceSlug: "acme", IssueID: "i1", SequenceID: 9}).batchKey() {
		t.Error("Expected identical scopes to share a batch key")
	}
}

func TestClassifyDaemonError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"missing socket", &os.PathError{Op: "dial", Path: "/x", Err: syscall.ENOENT}, ErrSocketNotFound},
		{"permission", fmt.Errorf("dial: %w", os.ErrPermission), ErrSocketPermission},
		{"refused", &net.OpError{Op: "dial", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}, ErrConnectionRefused},
		{"other", errors.New("boom"), ErrDaemonNotRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDaemonError(tt.err)
			if got.Code != tt.want {
				t.Errorf("Expected code %v, got %v", tt.want, got.Code)
			}
			if !errors.Is(got, tt.err) {
				t.Error("Expected classified error to wrap the cause")
			}
			if got.Hint == "" {
				t.Error("Expected a hint")
			}
		})
	}

	if ClassifyDaemonError(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}
