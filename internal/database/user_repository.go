package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thenoetrevino/ticks/internal/models"
)

// UserRepo handles user persistence
type UserRepo struct {
	db *sql.DB
}

// Create inserts a user
func (r *UserRepo) Create(ctx context.Context, user models.UserLite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, avatar, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.DisplayName, user.Avatar, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.ID, err)
	}
	return nil
}

// GetByID returns a user, or ErrNotFound
func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.UserLite, error) {
	return getUser(ctx, r.db, id)
}

func getUser(ctx context.Context, q queryer, id string) (*models.UserLite, error) {
	var u models.UserLite
	err := q.QueryRowContext(ctx,
		`SELECT id, display_name, avatar FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.DisplayName, &u.Avatar)
	if err != nil {
		return nil, notFound(err, "user "+id)
	}
	return &u, nil
}
