package cli

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/ticks/internal/api"
	checklistsvc "github.com/thenoetrevino/ticks/internal/services/checklist"
	"github.com/thenoetrevino/ticks/internal/services/workitem"
)

// Exit codes for CLI commands, following Unix conventions.
const (
	ExitSuccess = 0

	// ExitError is any failure without a more specific code, including an
	// unreachable API server.
	ExitError = 1

	// ExitUsage means wrong arguments or missing configuration
	ExitUsage = 2

	// ExitNotFound means the work item, checklist item or user does not exist
	ExitNotFound = 3

	// ExitDataErr means the server answered with something unreadable
	ExitDataErr = 4

	// ExitValidation means the input was rejected, locally or by the server
	ExitValidation = 5
)

// ExitStatusError carries the process exit code for a failed command.
// The message has already been printed by the time it is returned.
type ExitStatusError struct {
	Code int
	Err  error
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("exit %d: %v", e.Code, e.Err)
}

func (e *ExitStatusError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitStatusError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitError
}

// Classification is the machine-readable form of a command failure
type Classification struct {
	Code       string
	Exit       int
	Message    string
	Suggestion string
}

// Classify maps err to an error code, exit code and user-facing message
func Classify(err error, fallback string) Classification {
	var refErr *RefError
	switch {
	case checklistsvc.IsValidation(err):
		return Classification{Code: "VALIDATION_ERROR", Exit: ExitValidation, Message: err.Error()}
	case errors.Is(err, workitem.ErrMissingUser):
		return Classification{
			Code:       "MISSING_USER",
			Exit:       ExitUsage,
			Message:    err.Error(),
			Suggestion: "Run 'ticks use user ID' or set TICKS_USER_ID",
		}
	case errors.Is(err, workitem.ErrMissingWorkspace):
		return Classification{
			Code:       "MISSING_WORKSPACE",
			Exit:       ExitUsage,
			Message:    err.Error(),
			Suggestion: "Pass --workspace or run 'ticks use workspace SLUG'",
		}
	case errors.As(err, &refErr):
		return Classification{Code: "NOT_FOUND", Exit: ExitNotFound, Message: err.Error()}
	case api.IsNotFound(err):
		return Classification{Code: "NOT_FOUND", Exit: ExitNotFound, Message: api.Message(err, fallback)}
	case api.IsTransportUnavailable(err):
		return Classification{
			Code:       "SERVER_UNAVAILABLE",
			Exit:       ExitError,
			Message:    api.Message(err, fallback),
			Suggestion: "Start the API with 'ticks serve' or check server.base_url",
		}
	case api.IsServerRejection(err):
		return Classification{Code: "REJECTED", Exit: ExitValidation, Message: api.Message(err, fallback)}
	default:
		return Classification{Code: "ERROR", Exit: ExitError, Message: err.Error()}
	}
}
