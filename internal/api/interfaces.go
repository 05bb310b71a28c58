package api

import (
	"context"

	"github.com/thenoetrevino/ticks/internal/models"
)

// ChecklistTransport is the set of checklist calls the cache and the
// mutation engine depend on. *Client implements it.
type ChecklistTransport interface {
	GetChecklist(ctx context.Context, key models.ChecklistKey) (*models.Snapshot, error)
	CreateChecklistItem(ctx context.Context, key models.ChecklistKey, req models.CreateItemRequest) (*models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, key models.ChecklistKey, itemID string, req models.UpdateItemRequest) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, key models.ChecklistKey, itemID string) error
}

// IssueTransport is the set of work item calls used by the home widgets.
type IssueTransport interface {
	ListWorkspaceIssues(ctx context.Context, workspaceSlug string, query IssueQuery) (*models.IssuesResponse, error)
	UpdateIssueAssignees(ctx context.Context, workspaceSlug, projectID, issueID string, assigneeIDs []string) error
}

var (
	_ ChecklistTransport = (*Client)(nil)
	_ IssueTransport     = (*Client)(nil)
)
