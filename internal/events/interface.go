package events

import "context"

// NotifyFunc receives connection status notices meant for the user
// (level is "info", "warning" or "error").
type NotifyFunc func(level, message string)

// EventPublisher defines the interface for sending and receiving events.
type EventPublisher interface {
	// Connect establishes a connection to the daemon socket
	Connect(ctx context.Context) error

	// SendEvent queues an event to be sent to the daemon
	SendEvent(event Event) error

	// Listen starts listening for events from the daemon. After a dropped
	// connection is restored the channel receives an EventReconnected.
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe scopes received events to one workspace ("" = all)
	Subscribe(workspaceSlug string) error

	// SetNotifyFunc registers a callback for connection status notices
	SetNotifyFunc(fn NotifyFunc)

	// Close closes the connection to the daemon and stops all goroutines
	Close() error
}

// Compile-time verification that *Client implements EventPublisher
var _ EventPublisher = (*Client)(nil)
