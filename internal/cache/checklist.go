package cache

import (
	"context"
	"log/slog"

	"github.com/thenoetrevino/ticks/internal/api"
	"github.com/thenoetrevino/ticks/internal/events"
	"github.com/thenoetrevino/ticks/internal/models"
)

// ChecklistStore caches one checklist snapshot per work item
type ChecklistStore = Store[models.ChecklistKey, *models.Snapshot]

// NewChecklistStore builds the checklist cache on top of transport.
// Fetched snapshots are put in display order; a reported progress that
// disagrees with the items is logged and kept.
func NewChecklistStore(transport api.ChecklistTransport, opts ...Option) *ChecklistStore {
	o := storeOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	fetch := func(ctx context.Context, key models.ChecklistKey) (*models.Snapshot, error) {
		snapshot, err := transport.GetChecklist(ctx, key)
		if err != nil {
			return nil, err
		}
		models.SortItems(snapshot.Items)
		if err := snapshot.VerifyProgress(); err != nil {
			logger.Warn("checklist progress disagrees with items", "key", key.String(), "error", err)
		}
		return snapshot, nil
	}

	opts = append([]Option{WithName("checklist")}, opts...)
	return NewStore(fetch, checklistAffected, opts...)
}

func checklistAffected(event events.Event, key models.ChecklistKey) bool {
	return event.Type == events.EventChecklistChanged && event.ChecklistKey() == key
}

// UnassignedStore caches the unassigned work items of a workspace for one user
type UnassignedStore = Store[models.WorkspaceUserKey, []models.Issue]

// NewUnassignedStore builds the unassigned work items cache around fetch.
func NewUnassignedStore(fetch FetchFunc[models.WorkspaceUserKey, []models.Issue], opts ...Option) *UnassignedStore {
	opts = append([]Option{WithName("unassigned")}, opts...)
	return NewStore(fetch, unassignedAffected, opts...)
}

func unassignedAffected(event events.Event, key models.WorkspaceUserKey) bool {
	return event.Type == events.EventIssueChanged &&
		(event.WorkspaceSlug == "" || event.WorkspaceSlug == key.WorkspaceSlug)
}
