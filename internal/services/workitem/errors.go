package workitem

import "errors"

// Work item validation errors
var (
	ErrMissingWorkspace = errors.New("workspace is required")
	ErrMissingProject   = errors.New("work item has no project")
	ErrMissingIssue     = errors.New("work item is required")
	ErrMissingUser      = errors.New("user is required to claim a work item")
)
