// Package checklist validates and dispatches checklist commands and keeps the
// checklist cache fresh after successful writes.
package checklist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/thenoetrevino/ticks/internal/api"
	"github.com/thenoetrevino/ticks/internal/models"
)

const maxNameLength = models.MaxChecklistItemNameLength

// Invalidator is the part of the checklist cache the service needs.
type Invalidator interface {
	Invalidate(key models.ChecklistKey)
}

// Service defines the checklist commands.
type Service interface {
	Create(ctx context.Context, key models.ChecklistKey, req CreateRequest) (*models.ChecklistItem, error)
	ToggleCompletion(ctx context.Context, key models.ChecklistKey, item models.ChecklistItem) (*models.ChecklistItem, error)
	Rename(ctx context.Context, key models.ChecklistKey, item models.ChecklistItem, newName string) (*models.ChecklistItem, error)
	Reassign(ctx context.Context, key models.ChecklistKey, item models.ChecklistItem, assigneeID *string) (*models.ChecklistItem, error)
	Reorder(ctx context.Context, key models.ChecklistKey, item models.ChecklistItem, sortOrder float64) (*models.ChecklistItem, error)
	Delete(ctx context.Context, key models.ChecklistKey, itemID string) error
}

// CreateRequest holds the user input for a new checklist item.
// Nil pointers are left for the server to default.
type CreateRequest struct {
	Name       string
	AssigneeID *string
	SortOrder  *float64
}

// Option configures the service
type Option func(*service)

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	transport api.ChecklistTransport
	cache     Invalidator
	logger    *slog.Logger
}

// NewService creates a checklist service. cache may be nil when nothing is cached.
func NewService(transport api.ChecklistTransport, cache Invalidator, opts ...Option) Service {
	s := &service{
		transport: transport,
		cache:     cache,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and dispatches a new item. The item only shows up in the
// checklist once the cache refetches.
func (s *service) Create(ctx context.Context, key models.ChecklistKey, req CreateRequest) (*models.ChecklistItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", ErrEmptyName)
	}
	if !key.Valid() {
		return nil, invalid("issue", ErrMissingIssue)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, invalid("name", ErrNameTooLong)
	}

	done := false
	item, err := s.transport.CreateChecklistItem(detach(ctx), key, models.CreateItemRequest{
		Name:        name,
		IsCompleted: &done,
		AssigneeID:  req.AssigneeID,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checklist item: %w", err)
	}

	s.written(key, "create", item.ID)
	return item, nil
}

// ToggleCompletion flips is_completed. Completion time and actor are left to the server.
func (s *service) ToggleCompletion(ctx context.Context, key models.ChecklistKey, item models.ChecklistItem) (*models.ChecklistItem, error) {
	done := !item.IsCompleted
	return s.update(ctx, key, item.ID, "toggle", models.UpdateItemRequest{IsCompleted: &done})
}

// Rename sends the trimmed name. An empty or unchanged name is a no-op that
// returns the item as given.
func (s *service) Rename(ctx context.Context, key models.ChecklistKey, item models.ChecklistItem, newName string) (*models.ChecklistItem, error) {
	name := strings.TrimSpace(newName)
	if name == "" || name == item.Name {
		return &item, nil
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, invalid("name", ErrNameTooLong)
	}
	return s.update(ctx, key, item.ID, "rename", models.UpdateItemRequest{Name: &name})
}

// Reassign sets the assignee; nil clears it.
func (s *service) Reassign(ctx context.Context, key models.ChecklistKey, item models.ChecklistItem, assigneeID *string) (*models.ChecklistItem, error) {
	if assigneeID != nil && *assigneeID == "" {
		assigneeID = nil
	}
	return s.update(ctx, key, item.ID, "reassign", models.UpdateItemRequest{
		AssigneeSet: true,
		AssigneeID:  assigneeID,
	})
}

// Reorder moves an item to a new sort position.
func (s *service) Reorder(ctx context.Context, key models.ChecklistKey, item models.ChecklistItem, sortOrder float64) (*models.ChecklistItem, error) {
	return s.update(ctx, key, item.ID, "reorder", models.UpdateItemRequest{SortOrder: &sortOrder})
}

// Delete removes an item. A missing item surfaces as an api not-found error.
func (s *service) Delete(ctx context.Context, key models.ChecklistKey, itemID string) error {
	if !key.Valid() {
		return invalid("issue", ErrMissingIssue)
	}
	if itemID == "" {
		return invalid("item", ErrMissingItem)
	}

	if err := s.transport.DeleteChecklistItem(detach(ctx), key, itemID); err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}

	s.written(key, "delete", itemID)
	return nil
}

func (s *service) update(ctx context.Context, key models.ChecklistKey, itemID, op string, req models.UpdateItemRequest) (*models.ChecklistItem, error) {
	if !key.Valid() {
		return nil, invalid("issue", ErrMissingIssue)
	}
	if itemID == "" {
		return nil, invalid("item", ErrMissingItem)
	}

	item, err := s.transport.UpdateChecklistItem(detach(ctx), key, itemID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s checklist item: %w", op, err)
	}

	s.written(key, op, itemID)
	return item, nil
}

// written schedules a refetch after a successful write
func (s *service) written(key models.ChecklistKey, op, itemID string) {
	s.logger.Debug("checklist write succeeded", "op", op, "key", key.String(), "item_id", itemID)
	if s.cache != nil {
		s.cache.Invalidate(key)
	}
}

// detach keeps a dispatched write running when the caller gives up waiting.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
