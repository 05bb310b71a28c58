// Package database stores workspaces' work items and checklists in SQLite
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database
const MemoryDSN = ":memory:"

var pragmas = []string{
	// Required for ON DELETE CASCADE / SET NULL
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	// SQLite retries for this long when the database is locked
	"PRAGMA busy_timeout = 5000",
}

// InitDB opens the database file at path, creating its directory first.
func InitDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return Open(ctx, path)
}

// Open connects to dsn, applies pragmas and runs migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite benefits from a single writer connection, and an in-memory
	// database only exists on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	fail := func(err error) (*sql.DB, error) {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing db", "error", closeErr)
		}
		return nil, err
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			slog.Error("failed to apply pragma", "pragma", pragma, "error", err)
			return fail(fmt.Errorf("failed to apply %q: %w", pragma, err))
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return fail(fmt.Errorf("database ping failed: %w", err))
	}

	if err := runMigrations(ctx, db); err != nil {
		return fail(fmt.Errorf("failed to run migrations: %w", err))
	}

	return db, nil
}
