package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/thenoetrevino/ticks/internal/models"
)

// ChecklistRepository is checklist item data access
type ChecklistRepository interface {
	ListChecklistItems(ctx context.Context, issueID string) ([]models.ChecklistItem, error)
	GetChecklistItem(ctx context.Context, issueID, itemID string) (*models.ChecklistItem, error)
	CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, issueID, itemID, actor string, at time.Time) error
}

// IssueRepository is work item data access
type IssueRepository interface {
	CreateIssue(ctx context.Context, workspace string, issue *models.Issue) error
	GetIssue(ctx context.Context, workspace, projectID, issueID string) (*models.Issue, error)
	ListIssues(ctx context.Context, workspace string, filter IssueFilter) ([]models.Issue, error)
	SetIssueAssignees(ctx context.Context, issueID string, userIDs []string) error
}

// UserRepository is user data access
type UserRepository interface {
	CreateUser(ctx context.Context, user models.UserLite) error
	GetUser(ctx context.Context, id string) (*models.UserLite, error)
}

// DataStore defines every data operation the API server needs.
// Consumers can depend on the smaller interfaces instead.
type DataStore interface {
	ChecklistRepository
	IssueRepository
	UserRepository
}

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding.
type Repository struct {
	*ChecklistRepo
	*IssueRepo
	*UserRepo
}

var _ DataStore = (*Repository)(nil)

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ChecklistRepo: &ChecklistRepo{db: db},
		IssueRepo:     &IssueRepo{db: db},
		UserRepo:      &UserRepo{db: db},
	}
}

func (r *Repository) ListChecklistItems(ctx context.Context, issueID string) ([]models.ChecklistItem, error) {
	return r.ChecklistRepo.List(ctx, issueID)
}

func (r *Repository) GetChecklistItem(ctx context.Context, issueID, itemID string) (*models.ChecklistItem, error) {
	return r.ChecklistRepo.Get(ctx, issueID, itemID)
}

func (r *Repository) CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error) {
	return r.ChecklistRepo.Create(ctx, item)
}

func (r *Repository) UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error) {
	return r.ChecklistRepo.Update(ctx, item)
}

func (r *Repository) DeleteChecklistItem(ctx context.Context, issueID, itemID, actor string, at time.Time) error {
	return r.ChecklistRepo.SoftDelete(ctx, issueID, itemID, actor, at)
}

func (r *Repository) CreateIssue(ctx context.Context, workspace string, issue *models.Issue) error {
	return r.IssueRepo.Create(ctx, workspace, issue)
}

func (r *Repository) GetIssue(ctx context.Context, workspace, projectID, issueID string) (*models.Issue, error) {
	return r.IssueRepo.Get(ctx, workspace, projectID, issueID)
}

func (r *Repository) ListIssues(ctx context.Context, workspace string, filter IssueFilter) ([]models.Issue, error) {
	return r.IssueRepo.List(ctx, workspace, filter)
}

func (r *Repository) SetIssueAssignees(ctx context.Context, issueID string, userIDs []string) error {
	return r.IssueRepo.SetAssignees(ctx, issueID, userIDs)
}

func (r *Repository) CreateUser(ctx context.Context, user models.UserLite) error {
	return r.UserRepo.Create(ctx, user)
}

func (r *Repository) GetUser(ctx context.Context, id string) (*models.UserLite, error) {
	return r.UserRepo.GetByID(ctx, id)
}
