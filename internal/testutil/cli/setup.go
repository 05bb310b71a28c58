// Package cli provides helpers for testing ticks commands end to end against
// an in-memory API server.
package cli

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/ticks/internal/app"
	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/database"
	"github.com/thenoetrevino/ticks/internal/models"
	"github.com/thenoetrevino/ticks/internal/server"
)

// Fixture IDs created by SetupCLITest
const (
	Workspace = "acme"
	ProjectID = "p1"
	IssueID   = "i1"
	UserID    = "u1"
	OtherUser = "u2"
)

// SetupCLITest serves an in-memory database over httptest and returns the
// repository plus an App pointed at it. The database holds users u1 (Ada)
// and u2 (Grace) and unassigned work item i1 (#1) in acme/p1; the config
// defaults to that workspace, project and user u1.
func SetupCLITest(t *testing.T) (*database.Repository, *app.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.Open(ctx, database.MemoryDSN)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := database.NewRepository(db)

	for _, user := range []models.UserLite{{ID: UserID, DisplayName: "Ada"}, {ID: OtherUser, DisplayName: "Grace"}} {
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
	}
	CreateTestIssue(t, repo, IssueID, 1, "Fix login")

	ts := httptest.NewServer(server.New(repo).Handler())
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		Server:      config.ServerConfig{BaseURL: ts.URL},
		User:        config.UserConfig{ID: UserID},
		Workspace:   Workspace,
		Project:     ProjectID,
		KeyMappings: config.DefaultKeyMappings(),
		ColorScheme: config.DefaultColorScheme(),
	}
	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	return repo, a
}

// CreateTestIssue adds a work item to acme/p1, unassigned unless assignees are given
func CreateTestIssue(t *testing.T, repo *database.Repository, id string, seq int, name string, assignees ...string) models.Issue {
	t.Helper()
	if assignees == nil {
		assignees = []string{}
	}
	issue := models.Issue{
		ID:          id,
		ProjectID:   ProjectID,
		Name:        name,
		SequenceID:  seq,
		AssigneeIDs: assignees,
		CreatedAt:   time.Now().UTC().Add(time.Duration(seq) * time.Second),
	}
	if err := repo.CreateIssue(context.Background(), Workspace, &issue); err != nil {
		t.Fatalf("Failed to create issue: %v", err)
	}
	return issue
}

// CreateTestItem adds a checklist item to issueID directly in the database
func CreateTestItem(t *testing.T, repo *database.Repository, issueID, id, name string, sortOrder float64) models.ChecklistItem {
	t.Helper()
	now := time.Now().UTC()
	item, err := repo.CreateChecklistItem(context.Background(), &models.ChecklistItem{
		ID:        id,
		IssueID:   issueID,
		Name:      name,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: UserID,
		UpdatedBy: UserID,
	})
	if err != nil {
		t.Fatalf("Failed to create checklist item: %v", err)
	}
	return *item
}
