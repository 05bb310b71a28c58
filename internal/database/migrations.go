package database

import (
	"context"
	"database/sql"
)

// schema is applied in order; every statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		avatar TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id TEXT PRIMARY KEY,
		workspace_slug TEXT NOT NULL,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		sequence_id INTEGER NOT NULL,
		state_id TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'none',
		is_epic INTEGER NOT NULL DEFAULT 0,
		type_id TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (project_id, sequence_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_workspace
		ON issues(workspace_slug, created_at)`,
	`CREATE TABLE IF NOT EXISTS issue_assignees (
		issue_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (issue_id, user_id),
		FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS checklist_items (
		id TEXT PRIMARY KEY,
		issue_id TEXT NOT NULL,
		name TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT,
		completed_by TEXT,
		assignee_id TEXT,
		sort_order REAL NOT NULL DEFAULT 65535,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		updated_by TEXT NOT NULL DEFAULT '',
		deleted_at TEXT,
		FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE,
		FOREIGN KEY (assignee_id) REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checklist_items_issue
		ON checklist_items(issue_id, sort_order)`,
}

// runMigrations creates the database schema
func runMigrations(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
