package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/thenoetrevino/ticks/internal/models"
)

// ErrIncompleteKey is returned when a checklist call is addressed with a key
// that is missing its workspace, project or issue.
var ErrIncompleteKey = errors.New("checklist key is incomplete")

func (c *Client) checklistURL(key models.ChecklistKey, itemID string) (string, error) {
	if !key.Valid() {
		return "", fmt.Errorf("%w: %q", ErrIncompleteKey, key.String())
	}
	segments := []string{
		"workspaces", key.WorkspaceSlug,
		"projects", key.ProjectID,
		"work-items", key.IssueID,
		"checklist",
	}
	if itemID != "" {
		segments = append(segments, itemID)
	}
	return c.endpoint(nil, segments...), nil
}

// GetChecklist fetches the ordered items and progress of a work item's checklist.
func (c *Client) GetChecklist(ctx context.Context, key models.ChecklistKey) (*models.Snapshot, error) {
	endpoint, err := c.checklistURL(key, "")
	if err != nil {
		return nil, err
	}

	var snapshot models.Snapshot
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &snapshot, "Failed to load checklist"); err != nil {
		return nil, err
	}
	if snapshot.Items == nil {
		snapshot.Items = []models.ChecklistItem{}
	}
	return &snapshot, nil
}

// CreateChecklistItem adds an item to a work item's checklist.
func (c *Client) CreateChecklistItem(ctx context.Context, key models.ChecklistKey, req models.CreateItemRequest) (*models.ChecklistItem, error) {
	endpoint, err := c.checklistURL(key, "")
	if err != nil {
		return nil, err
	}

	var item models.ChecklistItem
	if err := c.do(ctx, http.MethodPost, endpoint, req, &item, "Failed to create checklist item"); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateChecklistItem applies a partial update to one checklist item.
func (c *Client) UpdateChecklistItem(ctx context.Context, key models.ChecklistKey, itemID string, req models.UpdateItemRequest) (*models.ChecklistItem, error) {
	if itemID == "" {
		return nil, fmt.Errorf("checklist item id is required")
	}
	endpoint, err := c.checklistURL(key, itemID)
	if err != nil {
		return nil, err
	}

	var item models.ChecklistItem
	if err := c.do(ctx, http.MethodPatch, endpoint, req, &item, "Failed to update checklist item"); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteChecklistItem removes one checklist item.
func (c *Client) DeleteChecklistItem(ctx context.Context, key models.ChecklistKey, itemID string) error {
	if itemID == "" {
		return fmt.Errorf("checklist item id is required")
	}
	endpoint, err := c.checklistURL(key, itemID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil, "Failed to delete checklist item")
}
