package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thenoetrevino/ticks/internal/models"
)

// ChecklistRepo handles checklist item persistence.
// Deleted items are kept with deleted_at set and are invisible to reads.
type ChecklistRepo struct {
	db *sql.DB
}

const checklistSelect = `
	SELECT c.id, c.issue_id, c.name, c.is_completed, c.completed_at, c.completed_by,
		c.assignee_id, c.sort_order, c.created_at, c.updated_at, c.created_by, c.updated_by,
		a.id, a.display_name, a.avatar,
		b.id, b.display_name, b.avatar
	FROM checklist_items c
	LEFT JOIN users a ON a.id = c.assignee_id
	LEFT JOIN users b ON b.id = c.completed_by`

// List returns the live items of a work item in display order
func (r *ChecklistRepo) List(ctx context.Context, issueID string) ([]models.ChecklistItem, error) {
	rows, err := r.db.QueryContext(ctx, checklistSelect+`
		WHERE c.issue_id = ? AND c.deleted_at IS NULL
		ORDER BY c.sort_order, c.created_at, c.id`, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	items := []models.ChecklistItem{}
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Get returns a live item of a work item, or ErrNotFound
func (r *ChecklistRepo) Get(ctx context.Context, issueID, itemID string) (*models.ChecklistItem, error) {
	return getChecklistItem(ctx, r.db, issueID, itemID)
}

func getChecklistItem(ctx context.Context, q queryer, issueID, itemID string) (*models.ChecklistItem, error) {
	row := q.QueryRowContext(ctx, checklistSelect+`
		WHERE c.issue_id = ? AND c.id = ? AND c.deleted_at IS NULL`, issueID, itemID)
	item, err := scanChecklistItem(row)
	if err != nil {
		return nil, notFound(err, "checklist item "+itemID)
	}
	return item, nil
}

// Create inserts item and returns it as stored
func (r *ChecklistRepo) Create(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error) {
	var created *models.ChecklistItem
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO checklist_items (id, issue_id, name, is_completed, completed_at, completed_by,
				assignee_id, sort_order, created_at, updated_at, created_by, updated_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.IssueID, item.Name, item.IsCompleted, nullTime(item.CompletedAt), nullString(item.CompletedBy),
			nullString(item.Assignee), item.SortOrder, formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
			item.CreatedBy, item.UpdatedBy)
		if err != nil {
			return fmt.Errorf("failed to create checklist item: %w", err)
		}

		created, err = getChecklistItem(ctx, tx, item.IssueID, item.ID)
		return err
	})
	return created, err
}

// Update writes every mutable field of item and returns it as stored
func (r *ChecklistRepo) Update(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error) {
	var updated *models.ChecklistItem
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE checklist_items
			SET name = ?, is_completed = ?, completed_at = ?, completed_by = ?, assignee_id = ?,
				sort_order = ?, updated_at = ?, updated_by = ?
			WHERE issue_id = ? AND id = ? AND deleted_at IS NULL`,
			item.Name, item.IsCompleted, nullTime(item.CompletedAt), nullString(item.CompletedBy),
			nullString(item.Assignee), item.SortOrder, formatTime(item.UpdatedAt), item.UpdatedBy,
			item.IssueID, item.ID)
		if err != nil {
			return fmt.Errorf("failed to update checklist item: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("checklist item %s: %w", item.ID, ErrNotFound)
		}

		updated, err = getChecklistItem(ctx, tx, item.IssueID, item.ID)
		return err
	})
	return updated, err
}

// SoftDelete marks an item deleted. A missing or already deleted item is ErrNotFound.
func (r *ChecklistRepo) SoftDelete(ctx context.Context, issueID, itemID, actor string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE checklist_items SET deleted_at = ?, updated_at = ?, updated_by = ?
		WHERE issue_id = ? AND id = ? AND deleted_at IS NULL`,
		formatTime(at), formatTime(at), actor, issueID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("checklist item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

func scanChecklistItem(s scanner) (*models.ChecklistItem, error) {
	var (
		item                   models.ChecklistItem
		completedAt            sql.NullString
		completedBy, assignee  sql.NullString
		createdAt, updatedAt   string
		assigneeID, assigneeNm sql.NullString
		assigneeAv             sql.NullString
		completerID, completNm sql.NullString
		completerAv            sql.NullString
	)
	err := s.Scan(&item.ID, &item.IssueID, &item.Name, &item.IsCompleted, &completedAt, &completedBy,
		&assignee, &item.SortOrder, &createdAt, &updatedAt, &item.CreatedBy, &item.UpdatedBy,
		&assigneeID, &assigneeNm, &assigneeAv,
		&completerID, &completNm, &completerAv)
	if err != nil {
		return nil, err
	}

	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if item.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	item.CompletedBy = nullStringToPtr(completedBy)
	item.Assignee = nullStringToPtr(assignee)
	item.AssigneeDetail = userLite(assigneeID, assigneeNm, assigneeAv)
	item.CompletedByDetail = userLite(completerID, completNm, completerAv)
	return &item, nil
}

func userLite(id, name, avatar sql.NullString) *models.UserLite {
	if !id.Valid {
		return nil
	}
	return &models.UserLite{ID: id.String, DisplayName: name.String, Avatar: avatar.String}
}
