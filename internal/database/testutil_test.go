package database

import (
	"context"
	"testing"
	"time"

	"github.com/thenoetrevino/ticks/internal/models"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestRepo opens a migrated in-memory database
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(context.Background(), MemoryDSN)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

// createTestUser inserts a user with id as display name
func createTestUser(t *testing.T, repo *Repository, id string) {
	t.Helper()
	if err := repo.CreateUser(context.Background(), models.UserLite{ID: id, DisplayName: "User " + id}); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
}

// createTestIssue inserts a work item in workspace "acme", project "p1"
func createTestIssue(t *testing.T, repo *Repository, id string, seq int, assignees ...string) models.Issue {
	t.Helper()
	if assignees == nil {
		assignees = []string{}
	}
	issue := models.Issue{
		ID:          id,
		ProjectID:   "p1",
		Name:        "Issue " + id,
		SequenceID:  seq,
		Priority:    "none",
		AssigneeIDs: assignees,
		CreatedAt:   time.Date(2025, 1, 1, 0, seq, 0, 0, time.UTC),
	}
	if err := repo.CreateIssue(context.Background(), "acme", &issue); err != nil {
		t.Fatalf("Failed to create issue: %v", err)
	}
	return issue
}

// createTestItem inserts a checklist item on issueID
func createTestItem(t *testing.T, repo *Repository, issueID, id, name string, sortOrder float64) *models.ChecklistItem {
	t.Helper()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	item, err := repo.CreateChecklistItem(context.Background(), &models.ChecklistItem{
		ID:        id,
		IssueID:   issueID,
		Name:      name,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "u1",
		UpdatedBy: "u1",
	})
	if err != nil {
		t.Fatalf("Failed to create checklist item: %v", err)
	}
	return item
}
