package checklist

import (
	"errors"
	"fmt"
)

// Checklist validation errors. They are returned wrapped in a *ValidationError
// so callers can tell them apart from transport failures.
var (
	ErrEmptyName    = errors.New("checklist item name cannot be empty")
	ErrNameTooLong  = fmt.Errorf("checklist item name cannot exceed %d characters", maxNameLength)
	ErrMissingIssue = errors.New("work item is required")
	ErrMissingItem  = errors.New("checklist item id is required")
)

// ValidationError is a command rejected before anything was sent to the server.
type ValidationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the sentinel describing the failure
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err was raised by client-side validation
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
