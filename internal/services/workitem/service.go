// Package workitem lists unassigned work items and lets a user claim one.
package workitem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/ticks/internal/api"
	"github.com/thenoetrevino/ticks/internal/models"
)

const (
	// UnassignedPageSize is how many unassigned work items are listed
	UnassignedPageSize = 100
	// UnassignedOrder lists the newest work items first
	UnassignedOrder = "-created_at"
)

// Invalidator is the part of the unassigned cache the service needs
type Invalidator interface {
	Invalidate(key models.WorkspaceUserKey)
}

// Service defines work item operations used by the home widgets
type Service interface {
	ListUnassigned(ctx context.Context, workspaceSlug string) ([]models.Issue, error)
	Claim(ctx context.Context, workspaceSlug string, issue models.Issue, userID string) error
}

type service struct {
	transport api.IssueTransport
	cache     Invalidator
	logger    *slog.Logger
}

// NewService creates a work item service. cache may be nil.
func NewService(transport api.IssueTransport, cache Invalidator, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{transport: transport, cache: cache, logger: logger}
}

// ListUnassigned returns the newest work items nobody is assigned to,
// whatever shape the server answered with.
func (s *service) ListUnassigned(ctx context.Context, workspaceSlug string) ([]models.Issue, error) {
	if workspaceSlug == "" {
		return nil, ErrMissingWorkspace
	}

	resp, err := s.transport.ListWorkspaceIssues(ctx, workspaceSlug, api.IssueQuery{
		Assignees: []string{api.UnassignedFilter},
		OrderBy:   UnassignedOrder,
		PerPage:   UnassignedPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned work items: %w", err)
	}

	issues := resp.Flatten()
	if issues == nil {
		issues = []models.Issue{}
	}
	return issues, nil
}

// Claim assigns the work item to userID and refreshes the unassigned list.
func (s *service) Claim(ctx context.Context, workspaceSlug string, issue models.Issue, userID string) error {
	switch {
	case userID == "":
		return ErrMissingUser
	case workspaceSlug == "":
		return ErrMissingWorkspace
	case issue.ID == "":
		return ErrMissingIssue
	case issue.ProjectID == "":
		return ErrMissingProject
	}

	err := s.transport.UpdateIssueAssignees(context.WithoutCancel(ctx), workspaceSlug, issue.ProjectID, issue.ID, []string{userID})
	if err != nil {
		return fmt.Errorf("failed to claim work item: %w", err)
	}

	s.logger.Debug("work item claimed", "workspace", workspaceSlug, "issue_id", issue.ID, "user_id", userID)
	if s.cache != nil {
		s.cache.Invalidate(models.WorkspaceUserKey{WorkspaceSlug: workspaceSlug, UserID: userID})
	}
	return nil
}
