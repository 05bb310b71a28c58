package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/ticks/internal/models"
)

// SeedResult lists what Seed created
type SeedResult struct {
	Workspace string
	ProjectID string
	Users     []models.UserLite
	Issues    []models.Issue
}

// Seed fills an empty database with a demo workspace: two users, a project
// with a few work items (some unassigned) and a checklist on the first one.
func Seed(ctx context.Context, store DataStore, workspace string) (*SeedResult, error) {
	result := &SeedResult{Workspace: workspace, ProjectID: uuid.NewString()}

	for _, name := range []string{"Ada", "Grace"} {
		user := models.UserLite{ID: uuid.NewString(), DisplayName: name}
		if err := store.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		result.Users = append(result.Users, user)
	}

	base := time.Now().UTC().Add(-time.Hour)
	titles := []struct {
		name     string
		assigned bool
	}{
		{"Fix auth bug", true},
		{"Refactor settings page", false},
		{"Update dependencies", false},
		{"Write onboarding guide", false},
	}
	for i, t := range titles {
		issue := models.Issue{
			ID:          uuid.NewString(),
			ProjectID:   result.ProjectID,
			Name:        t.name,
			SequenceID:  i + 1,
			Priority:    "none",
			AssigneeIDs: []string{},
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if t.assigned {
			issue.AssigneeIDs = []string{result.Users[0].ID}
		}
		if err := store.CreateIssue(ctx, workspace, &issue); err != nil {
			return nil, err
		}
		result.Issues = append(result.Issues, issue)
	}

	first := result.Issues[0]
	actor := result.Users[0].ID
	for i, name := range []string{"Reproduce on staging", "Write regression test", "Ship the fix"} {
		now := base.Add(time.Duration(i) * time.Second)
		item := &models.ChecklistItem{
			ID:        uuid.NewString(),
			IssueID:   first.ID,
			Name:      name,
			SortOrder: float64(i+1) * 1000,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: actor,
			UpdatedBy: actor,
		}
		if i == 0 {
			item.IsCompleted = true
			item.CompletedAt = &now
			item.CompletedBy = &actor
		}
		if _, err := store.CreateChecklistItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to seed checklist: %w", err)
		}
	}

	return result, nil
}
