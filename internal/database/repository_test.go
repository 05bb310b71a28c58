package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/ticks/internal/models"
)

// ============================================================================
// CHECKLIST ITEMS
// ============================================================================

func TestChecklist_ListOrdersBySortOrder(t *testing.T) {
	repo := setupTestRepo(t)
	createTestIssue(t, repo, "i1", 1)
	createTestItem(t, repo, "i1", "c", "third", 3000)
	createTestItem(t, repo, "i1", "a", "first", 1000)
	createTestItem(t, repo, "i1", "b", "second", 2000)

	items, err := repo.ListChecklistItems(context.Background(), "i1")
	if err != nil {
		t.Fatalf("ListChecklistItems failed: %v", err)
	}
	if len(items) != 3 || items[0].Name != "first" || items[2].Name != "third" {
		t.Errorf("Unexpected order: %+v", items)
	}
}

func TestChecklist_EmptyListIsNotNil(t *testing.T) {
	repo := setupTestRepo(t)
	createTestIssue(t, repo, "i1", 1)

	items, err := repo.ListChecklistItems(context.Background(), "i1")
	if err != nil {
		t.Fatalf("ListChecklistItems failed: %v", err)
	}
	if items == nil {
		t.Error("Expected empty slice, got nil")
	}
}

func TestChecklist_UpdateRoundTripsCompletionAndAssignee(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "u1")
	createTestIssue(t, repo, "i1", 1)
	item := createTestItem(t, repo, "i1", "a", "first", 1000)

	at := time.Date(2025, 2, 3, 4, 5, 6, 7, time.UTC)
	actor := "u1"
	item.IsCompleted = true
	item.CompletedAt = &at
	item.CompletedBy = &actor
	item.Assignee = &actor
	item.UpdatedAt = at

	updated, err := repo.UpdateChecklistItem(context.Background(), item)
	if err != nil {
		t.Fatalf("UpdateChecklistItem failed: %v", err)
	}
	if !updated.IsCompleted || updated.CompletedAt == nil || !updated.CompletedAt.Equal(at) {
		t.Errorf("Expected completion to round trip, got %+v", updated)
	}
	if updated.AssigneeDetail == nil || updated.AssigneeDetail.DisplayName != "User u1" {
		t.Errorf("Expected assignee detail, got %+v", updated.AssigneeDetail)
	}
	if updated.CompletedByDetail == nil || updated.CompletedByDetail.ID != "u1" {
		t.Errorf("Expected completer detail, got %+v", updated.CompletedByDetail)
	}
}

func TestChecklist_SoftDelete(t *testing.T) {
	repo := setupTestRepo(t)
	createTestIssue(t, repo, "i1", 1)
	createTestItem(t, repo, "i1", "a", "first", 1000)
	ctx := context.Background()

	if err := repo.DeleteChecklistItem(ctx, "i1", "a", "u1", time.Now()); err != nil {
		t.Fatalf("DeleteChecklistItem failed: %v", err)
	}

	if _, err := repo.GetChecklistItem(ctx, "i1", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected deleted item to be hidden, got %v", err)
	}
	if err := repo.DeleteChecklistItem(ctx, "i1", "a", "u1", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected second delete to be ErrNotFound, got %v", err)
	}
	if items, _ := repo.ListChecklistItems(ctx, "i1"); len(items) != 0 {
		t.Errorf("Expected no live items, got %d", len(items))
	}
}

func TestChecklist_ItemBelongsToItsIssue(t *testing.T) {
	repo := setupTestRepo(t)
	createTestIssue(t, repo, "i1", 1)
	createTestIssue(t, repo, "i2", 2)
	createTestItem(t, repo, "i1", "a", "first", 1000)

	if _, err := repo.GetChecklistItem(context.Background(), "i2", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound through another issue, got %v", err)
	}
}

func TestChecklist_DeletingUserClearsAssignee(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "u1")
	createTestIssue(t, repo, "i1", 1)
	item := createTestItem(t, repo, "i1", "a", "first", 1000)
	assignee := "u1"
	item.Assignee = &assignee
	if _, err := repo.UpdateChecklistItem(context.Background(), item); err != nil {
		t.Fatalf("UpdateChecklistItem failed: %v", err)
	}

	if _, err := repo.UserRepo.db.Exec("DELETE FROM users WHERE id = 'u1'"); err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}

	got, err := repo.GetChecklistItem(context.Background(), "i1", "a")
	if err != nil {
		t.Fatalf("GetChecklistItem failed: %v", err)
	}
	if got.Assignee != nil {
		t.Errorf("Expected assignee cleared, got %v", *got.Assignee)
	}
}

// ============================================================================
// WORK ITEMS
// ============================================================================

func TestIssues_ListUnassignedNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "u1")
	createTestIssue(t, repo, "i1", 1)
	createTestIssue(t, repo, "i2", 2, "u1")
	createTestIssue(t, repo, "i3", 3)

	issues, err := repo.ListIssues(context.Background(), "acme", IssueFilter{Unassigned: true, NewestFirst: true, Limit: 10})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if len(issues) != 2 || issues[0].ID != "i3" || issues[1].ID != "i1" {
		t.Errorf("Expected [i3 i1], got %+v", issues)
	}
	if issues[0].AssigneeIDs == nil {
		t.Error("Expected empty assignee list, got nil")
	}
}

func TestIssues_ListByAssigneeAndLimit(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "u1")
	createTestIssue(t, repo, "i1", 1, "u1")
	createTestIssue(t, repo, "i2", 2, "u1")
	createTestIssue(t, repo, "i3", 3)

	issues, err := repo.ListIssues(context.Background(), "acme", IssueFilter{AssigneeIDs: []string{"u1"}, Limit: 1})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != "i1" || len(issues[0].AssigneeIDs) != 1 {
		t.Errorf("Unexpected issues %+v", issues)
	}
}

func TestIssues_OtherWorkspaceIsInvisible(t *testing.T) {
	repo := setupTestRepo(t)
	createTestIssue(t, repo, "i1", 1)

	if _, err := repo.GetIssue(context.Background(), "globex", "p1", "i1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	issues, _ := repo.ListIssues(context.Background(), "globex", IssueFilter{})
	if len(issues) != 0 {
		t.Errorf("Expected no issues, got %d", len(issues))
	}
}

func TestIssues_SetAssigneesRejectsUnknownUser(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "u1")
	createTestIssue(t, repo, "i1", 1)
	ctx := context.Background()

	if err := repo.SetIssueAssignees(ctx, "i1", []string{"ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
	if err := repo.SetIssueAssignees(ctx, "missing", []string{"u1"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown issue, got %v", err)
	}

	if err := repo.SetIssueAssignees(ctx, "i1", []string{"u1"}); err != nil {
		t.Fatalf("SetIssueAssignees failed: %v", err)
	}
	issue, err := repo.GetIssue(ctx, "acme", "p1", "i1")
	if err != nil {
		t.Fatalf("GetIssue failed: %v", err)
	}
	if len(issue.AssigneeIDs) != 1 || issue.AssigneeIDs[0] != "u1" {
		t.Errorf("Expected u1 assigned, got %v", issue.AssigneeIDs)
	}
}

// ============================================================================
// SETUP
// ============================================================================

func TestInitDB_CreatesFileAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ticks.db")
	ctx := context.Background()

	db, err := InitDB(ctx, path)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	repo := NewRepository(db)
	if err := repo.CreateUser(ctx, models.UserLite{ID: "u1", DisplayName: "Ada"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	db.Close()

	reopened, err := InitDB(ctx, path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	user, err := NewRepository(reopened).GetUser(ctx, "u1")
	if err != nil || user.DisplayName != "Ada" {
		t.Errorf("Expected persisted user, got %+v, %v", user, err)
	}
}

func TestSeed_CreatesDemoWorkspace(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	result, err := Seed(ctx, repo, "demo")
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	unassigned, err := repo.ListIssues(ctx, "demo", IssueFilter{Unassigned: true})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if len(unassigned) != len(result.Issues)-1 {
		t.Errorf("Expected all but one issue unassigned, got %d", len(unassigned))
	}

	items, err := repo.ListChecklistItems(ctx, result.Issues[0].ID)
	if err != nil {
		t.Fatalf("ListChecklistItems failed: %v", err)
	}
	progress := models.ComputeProgress(items)
	if progress.Total != 3 || progress.Completed != 1 {
		t.Errorf("Unexpected seeded progress %s", progress)
	}
}
