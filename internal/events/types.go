package events

import (
	"time"

	"github.com/thenoetrevino/ticks/internal/models"
)

// ProtocolVersion is the wire protocol version spoken by client and daemon
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	// EventChecklistChanged means the checklist of one work item was written
	EventChecklistChanged EventType = "checklist_changed"
	// EventIssueChanged means a work item itself (assignees, state) was written
	EventIssueChanged EventType = "issue_changed"
	// EventReconnected is emitted locally by the client after a dropped
	// connection is re-established; it never travels over the socket.
	EventReconnected EventType = "reconnected"
	EventPing        EventType = "ping"
	EventPong        EventType = "pong"
)

// Event is a change notification relayed through the daemon.
// Empty scope fields mean "any": an event without a workspace concerns every workspace.
type Event struct {
	Type          EventType `json:"type"`
	WorkspaceSlug string    `json:"workspace,omitempty"`
	ProjectID     string    `json:"project_id,omitempty"`
	IssueID       string    `json:"issue_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	SequenceID    int64     `json:"sequence_id"`
}

// ChecklistChanged builds the event published after a checklist write
func ChecklistChanged(key models.ChecklistKey) Event {
	return Event{
		Type:          EventChecklistChanged,
		WorkspaceSlug: key.WorkspaceSlug,
		ProjectID:     key.ProjectID,
		IssueID:       key.IssueID,
		Timestamp:     time.Now(),
	}
}

// IssueChanged builds the event published after a work item write
func IssueChanged(workspaceSlug, projectID, issueID string) Event {
	return Event{
		Type:          EventIssueChanged,
		WorkspaceSlug: workspaceSlug,
		ProjectID:     projectID,
		IssueID:       issueID,
		Timestamp:     time.Now(),
	}
}

// ChecklistKey returns the checklist addressed by the event
func (e Event) ChecklistKey() models.ChecklistKey {
	return models.ChecklistKey{
		WorkspaceSlug: e.WorkspaceSlug,
		ProjectID:     e.ProjectID,
		IssueID:       e.IssueID,
	}
}

// batchKey identifies events that collapse into one within a debounce window
func (e Event) batchKey() string {
	return string(e.Type) + "|" + e.WorkspaceSlug + "|" + e.ProjectID + "|" + e.IssueID
}

// SubscribeMessage is sent by clients to scope the events they receive
type SubscribeMessage struct {
	WorkspaceSlug string `json:"workspace"` // "" = all workspaces
}

// Matches reports whether an event falls inside the subscription
func (s SubscribeMessage) Matches(e Event) bool {
	return s.WorkspaceSlug == "" || e.WorkspaceSlug == "" || s.WorkspaceSlug == e.WorkspaceSlug
}

// Message wraps events and control messages for the wire protocol
type Message struct {
	Version   int               `json:"version"`
	Type      string            `json:"type"` // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:"event,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
}
