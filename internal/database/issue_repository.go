package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/thenoetrevino/ticks/internal/models"
)

// IssueFilter selects work items of a workspace
type IssueFilter struct {
	// Unassigned keeps only work items without assignees
	Unassigned bool
	// AssigneeIDs keeps work items assigned to any of these users
	AssigneeIDs []string
	// NewestFirst orders by created_at descending instead of ascending
	NewestFirst bool
	// Limit caps the result; zero means no limit
	Limit int
}

// IssueRepo handles work item persistence
type IssueRepo struct {
	db *sql.DB
}

// Create inserts a work item in workspace, with its assignees
func (r *IssueRepo) Create(ctx context.Context, workspace string, issue *models.Issue) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issues (id, workspace_slug, project_id, name, sequence_id, state_id, priority, is_epic, type_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			issue.ID, workspace, issue.ProjectID, issue.Name, issue.SequenceID,
			issue.StateID, issue.Priority, issue.IsEpic, nullString(issue.TypeID), formatTime(issue.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to create issue %s: %w", issue.ID, err)
		}
		return replaceAssignees(ctx, tx, issue.ID, issue.AssigneeIDs)
	})
}

// Get returns a work item of workspace, or ErrNotFound
func (r *IssueRepo) Get(ctx context.Context, workspace, projectID, issueID string) (*models.Issue, error) {
	row := r.db.QueryRowContext(ctx, issueSelect+`
		WHERE i.workspace_slug = ? AND i.project_id = ? AND i.id = ?`,
		workspace, projectID, issueID)

	issue, err := scanIssue(row)
	if err != nil {
		return nil, notFound(err, "issue "+issueID)
	}
	if err := r.loadAssignees(ctx, []*models.Issue{issue}); err != nil {
		return nil, err
	}
	return issue, nil
}

// List returns the work items of workspace matching filter
func (r *IssueRepo) List(ctx context.Context, workspace string, filter IssueFilter) ([]models.Issue, error) {
	var (
		where = []string{"i.workspace_slug = ?"}
		args  = []any{workspace}
	)

	if filter.Unassigned {
		where = append(where, "NOT EXISTS (SELECT 1 FROM issue_assignees a WHERE a.issue_id = i.id)")
	}
	if len(filter.AssigneeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.AssigneeIDs)), ",")
		where = append(where, "EXISTS (SELECT 1 FROM issue_assignees a WHERE a.issue_id = i.id AND a.user_id IN ("+placeholders+"))")
		for _, id := range filter.AssigneeIDs {
			args = append(args, id)
		}
	}

	query := issueSelect + " WHERE " + strings.Join(where, " AND ")
	if filter.NewestFirst {
		query += " ORDER BY i.created_at DESC, i.sequence_id DESC"
	} else {
		query += " ORDER BY i.created_at ASC, i.sequence_id ASC"
	}
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the only connection before the next query.
	rows.Close()

	if err := r.loadAssignees(ctx, issues); err != nil {
		return nil, err
	}

	result := make([]models.Issue, len(issues))
	for i, issue := range issues {
		result[i] = *issue
	}
	return result, nil
}

// SetAssignees replaces the assignees of a work item. Unknown users are rejected.
func (r *IssueRepo) SetAssignees(ctx context.Context, issueID string, userIDs []string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM issues WHERE id = ?`, issueID).Scan(&exists); err != nil {
			return notFound(err, "issue "+issueID)
		}
		for _, id := range userIDs {
			if _, err := getUser(ctx, tx, id); err != nil {
				return err
			}
		}
		return replaceAssignees(ctx, tx, issueID, userIDs)
	})
}

const issueSelect = `
	SELECT i.id, i.project_id, i.name, i.sequence_id, i.state_id, i.priority, i.is_epic, i.type_id, i.created_at
	FROM issues i`

type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(s scanner) (*models.Issue, error) {
	var (
		issue     models.Issue
		typeID    sql.NullString
		createdAt string
	)
	if err := s.Scan(&issue.ID, &issue.ProjectID, &issue.Name, &issue.SequenceID,
		&issue.StateID, &issue.Priority, &issue.IsEpic, &typeID, &createdAt); err != nil {
		return nil, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	issue.CreatedAt = t
	issue.TypeID = nullStringToPtr(typeID)
	issue.AssigneeIDs = []string{}
	return &issue, nil
}

func (r *IssueRepo) loadAssignees(ctx context.Context, issues []*models.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	byID := make(map[string]*models.Issue, len(issues))
	args := make([]any, 0, len(issues))
	for _, issue := range issues {
		byID[issue.ID] = issue
		args = append(args, issue.ID)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(issues)), ",")
	rows, err := r.db.QueryContext(ctx,
		`SELECT issue_id, user_id FROM issue_assignees WHERE issue_id IN (`+placeholders+`) ORDER BY user_id`, args...)
	if err != nil {
		return fmt.Errorf("failed to load assignees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var issueID, userID string
		if err := rows.Scan(&issueID, &userID); err != nil {
			return err
		}
		byID[issueID].AssigneeIDs = append(byID[issueID].AssigneeIDs, userID)
	}
	return rows.Err()
}

func replaceAssignees(ctx context.Context, tx *sql.Tx, issueID string, userIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM issue_assignees WHERE issue_id = ?`, issueID); err != nil {
		return fmt.Errorf("failed to clear assignees: %w", err)
	}
	for _, id := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO issue_assignees (issue_id, user_id) VALUES (?, ?)`, issueID, id); err != nil {
			return fmt.Errorf("failed to assign %s: %w", id, err)
		}
	}
	return nil
}
