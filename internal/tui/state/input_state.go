package state

import (
	"strings"
	"unicode/utf8"
)

// InputState holds a single-line text buffer, used for the checklist
// creation buffer and the rename buffer of the item being edited.
type InputState struct {
	// Buffer contains the text currently being typed
	Buffer string

	// InitialBuffer stores the value the buffer started from, for change detection
	InitialBuffer string

	// MaxLength caps the buffer, in characters. Zero means no limit.
	MaxLength int
}

// Clear resets the buffer and its snapshot
func (s *InputState) Clear() {
	s.Buffer = ""
	s.InitialBuffer = ""
}

// Set replaces the buffer, truncating to MaxLength characters.
func (s *InputState) Set(value string) {
	if s.MaxLength > 0 && utf8.RuneCountInString(value) > s.MaxLength {
		value = string([]rune(value)[:s.MaxLength])
	}
	s.Buffer = value
}

// IsEmpty returns true if the input buffer is empty or contains only whitespace.
func (s *InputState) IsEmpty() bool {
	return strings.TrimSpace(s.Buffer) == ""
}

// TrimmedBuffer returns the input buffer with leading and trailing whitespace removed.
func (s *InputState) TrimmedBuffer() string {
	return strings.TrimSpace(s.Buffer)
}

// HasInputChanges returns true if the trimmed buffer differs from the snapshot.
func (s *InputState) HasInputChanges() bool {
	return strings.TrimSpace(s.Buffer) != strings.TrimSpace(s.InitialBuffer)
}

// SnapshotInitialBuffer stores current buffer as initial value.
// Call this when an edit session starts.
func (s *InputState) SnapshotInitialBuffer() {
	s.InitialBuffer = s.Buffer
}
