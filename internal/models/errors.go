package models

import "errors"

var (
	// ErrProgressMismatch indicates a reported progress that disagrees with its items
	ErrProgressMismatch = errors.New("checklist progress does not match its items")

	// ErrUnknownIssuesShape indicates an issues payload that is neither a list nor a grouping
	ErrUnknownIssuesShape = errors.New("unrecognized issues response shape")
)
