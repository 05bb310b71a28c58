package state

import (
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
)

// NotificationLevel represents the severity/type of a notification.
type NotificationLevel int

const (
	// LevelInfo represents informational notifications (blue, bell icon)
	LevelInfo NotificationLevel = iota
	// LevelWarning represents warning notifications (yellow, warning icon)
	LevelWarning
	// LevelError represents error notifications (red, error icon)
	LevelError
)

// maxNotifications caps how many notifications are kept; older ones are dropped
const maxNotifications = 5

// ParseLevel maps "info", "warning" and "error" to a level. Unknown names are info.
func ParseLevel(level string) NotificationLevel {
	switch strings.ToLower(level) {
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// String implements fmt.Stringer
func (l NotificationLevel) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification represents a single notification message with a severity level.
type Notification struct {
	Level   NotificationLevel
	Message string
}

// NotificationState holds user-facing notifications. Controllers report to it
// from background goroutines, so it is safe for concurrent use.
type NotificationState struct {
	mu            sync.Mutex
	notifications []Notification
	windowWidth   int
	windowHeight  int
}

// NewNotificationState creates a new NotificationState with no notifications.
func NewNotificationState() *NotificationState {
	return &NotificationState{}
}

// Add adds a new notification with the specified level and message.
func (s *NotificationState) Add(level NotificationLevel, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append(s.notifications, Notification{Level: level, Message: message})
	if over := len(s.notifications) - maxNotifications; over > 0 {
		s.notifications = append([]Notification(nil), s.notifications[over:]...)
	}
}

// Notify adds a notification by level name. Its signature matches
// events.NotifyFunc so the state can be handed to the event client directly.
func (s *NotificationState) Notify(level, message string) {
	s.Add(ParseLevel(level), message)
}

// Clear removes all notifications.
func (s *NotificationState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// ClearLevel removes all notifications of a specific level.
func (s *NotificationState) ClearLevel(level NotificationLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.notifications[:0:0]
	for _, n := range s.notifications {
		if n.Level != level {
			filtered = append(filtered, n)
		}
	}
	s.notifications = filtered
}

// All returns a copy of the current notifications, oldest first.
func (s *NotificationState) All() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

// Latest returns the newest notification
func (s *NotificationState) Latest() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notifications) == 0 {
		return Notification{}, false
	}
	return s.notifications[len(s.notifications)-1], true
}

// HasAny returns true if there are any notifications.
func (s *NotificationState) HasAny() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications) > 0
}

// SetWindowSize updates the window dimensions for positioning calculations.
func (s *NotificationState) SetWindowSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windowWidth = width
	s.windowHeight = height
}

// GetLayers creates floating layers for all active notifications.
// Notifications are stacked vertically in the top-right corner of the screen.
func (s *NotificationState) GetLayers(renderFunc func(Notification) string) []*lipgloss.Layer {
	notifications := s.All()
	s.mu.Lock()
	width, height := s.windowWidth, s.windowHeight
	s.mu.Unlock()

	var layers []*lipgloss.Layer
	if width == 0 {
		return layers
	}

	row := 0
	for _, notification := range notifications {
		view := renderFunc(notification)
		viewHeight := lipgloss.Height(view)
		if row+viewHeight >= height {
			break
		}

		col := max(width-lipgloss.Width(view)-1, 0)
		layers = append(layers, lipgloss.NewLayer(view).X(col).Y(row))
		row += viewHeight + 1
	}
	return layers
}
