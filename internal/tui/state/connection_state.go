package state

import "sync"

// ConnectionStatus represents the current connection state to the daemon
type ConnectionStatus int

const (
	Disconnected ConnectionStatus = iota
	Connected
	Reconnecting
)

// String returns a human-readable string representation of the connection status
func (cs ConnectionStatus) String() string {
	switch cs {
	case Connected:
		return "Connected"
	case Disconnected:
		return "Disconnected"
	case Reconnecting:
		return "Reconnecting"
	default:
		return "Unknown"
	}
}

// ConnectionState manages the connection status to the daemon
type ConnectionState struct {
	mu     sync.RWMutex
	status ConnectionStatus
}

// NewConnectionState creates a new ConnectionState with the given initial status
func NewConnectionState(initialStatus ConnectionStatus) *ConnectionState {
	return &ConnectionState{
		status: initialStatus,
	}
}

// Status returns the current connection status (thread-safe)
func (cs *ConnectionState) Status() ConnectionStatus {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.status
}

// SetStatus updates the connection status (thread-safe)
func (cs *ConnectionState) SetStatus(status ConnectionStatus) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.status = status
}

// Observe tracks the status from the event client's notifications:
// a warning means the connection dropped, info means it is back,
// error means reconnecting gave up.
func (cs *ConnectionState) Observe(level string) {
	switch ParseLevel(level) {
	case LevelWarning:
		cs.SetStatus(Reconnecting)
	case LevelError:
		cs.SetStatus(Disconnected)
	default:
		cs.SetStatus(Connected)
	}
}

// NotifyFunc returns a callback for the event client that records the
// connection status and forwards the message to notifications. An info
// notice means the connection is back, so pending disconnect warnings go.
func NotifyFunc(conn *ConnectionState, notifications *NotificationState) func(level, message string) {
	return func(level, message string) {
		if conn != nil {
			conn.Observe(level)
		}
		if notifications != nil {
			if ParseLevel(level) == LevelInfo {
				notifications.ClearLevel(LevelWarning)
			}
			notifications.Notify(level, message)
		}
	}
}
