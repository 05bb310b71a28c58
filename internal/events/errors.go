package events

import (
	"errors"
	"net"
	"os"
	"syscall"
)

// ErrorCode represents daemon-related error types.
type ErrorCode int

const (
	ErrSocketNotFound ErrorCode = iota
	ErrSocketPermission
	ErrDaemonNotRunning
	ErrConnectionRefused
)

// ErrNotConnected is returned by calls that need a live daemon connection
var ErrNotConnected = errors.New("not connected to daemon")

// ErrQueueFull is returned when the outgoing event queue cannot take more events
var ErrQueueFull = errors.New("event queue full")

// DaemonError is a dial failure explained for the user.
type DaemonError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Err     error
}

// Error implements the error interface.
func (e *DaemonError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

// Unwrap returns the dial error that was classified
func (e *DaemonError) Unwrap() error {
	return e.Err
}

// ClassifyDaemonError maps dial errors to a DaemonError with a hint on how to fix them.
func ClassifyDaemonError(err error) *DaemonError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return &DaemonError{
			Code:    ErrSocketNotFound,
			Message: "Socket file not found",
			Hint:    "Start the relay: ticks daemon",
			Err:     err,
		}
	case errors.Is(err, os.ErrPermission):
		return &DaemonError{
			Code:    ErrSocketPermission,
			Message: "Permission denied",
			Hint:    "Check ~/.ticks/ permissions: chmod 700 ~/.ticks/",
			Err:     err,
		}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &DaemonError{
			Code:    ErrConnectionRefused,
			Message: "Connection refused",
			Hint:    "The relay may have crashed. Restart it: ticks daemon",
			Err:     err,
		}
	}

	return &DaemonError{
		Code:    ErrDaemonNotRunning,
		Message: "Daemon not running",
		Hint:    "Start the relay: ticks daemon",
		Err:     err,
	}
}

// isConnectionError reports whether err means the peer went away
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, ErrNotConnected)
}
