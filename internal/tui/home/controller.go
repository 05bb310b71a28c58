// Package home holds the home screen widgets. The unassigned work items
// widget lets the user volunteer for work nobody has picked up.
package home

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/ticks/internal/api"
	"github.com/thenoetrevino/ticks/internal/models"
	"github.com/thenoetrevino/ticks/internal/services/workitem"
)

// User-visible claim outcomes
const (
	ClaimSucceededMessage = "You've volunteered for this work item!"
	ClaimFailedMessage    = "Failed to volunteer for this work item"
)

// ErrClaimInFlight is returned when a claim is requested while another is running
var ErrClaimInFlight = errors.New("a claim is already in progress")

// Notifier receives user-visible messages
type Notifier interface {
	Notify(level, message string)
}

// UnassignedController runs claims for one user in one workspace,
// one at a time.
type UnassignedController struct {
	workspace string
	userID    string
	service   workitem.Service
	notifier  Notifier
	logger    *slog.Logger

	mu            sync.Mutex
	claimInFlight string
	closed        bool
}

// NewUnassignedController creates the controller. notifier may be nil.
func NewUnassignedController(workspace, userID string, service workitem.Service, notifier Notifier, logger *slog.Logger) *UnassignedController {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnassignedController{
		workspace: workspace,
		userID:    userID,
		service:   service,
		notifier:  notifier,
		logger:    logger,
	}
}

// Key returns the cache key of the list this controller acts on
func (c *UnassignedController) Key() models.WorkspaceUserKey {
	return models.WorkspaceUserKey{WorkspaceSlug: c.workspace, UserID: c.userID}
}

// ClaimInFlight returns the id of the work item being claimed, or ""
func (c *UnassignedController) ClaimInFlight() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.claimInFlight
}

// Claim assigns issue to the current user. The outcome is reported through
// the notifier and returned.
func (c *UnassignedController) Claim(ctx context.Context, issue models.Issue) (err error) {
	c.mu.Lock()
	if c.claimInFlight != "" {
		c.mu.Unlock()
		return ErrClaimInFlight
	}
	c.claimInFlight = issue.ID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.claimInFlight = ""
		closed := c.closed
		c.mu.Unlock()

		if closed {
			return
		}
		if err != nil {
			c.logger.Warn("claim failed", "issue_id", issue.ID, "error", err)
			c.notify("error", claimFailure(err))
			return
		}
		c.notify("info", ClaimSucceededMessage)
	}()

	return c.service.Claim(ctx, c.workspace, issue, c.userID)
}

// Close discards the outcome of a claim still in flight
func (c *UnassignedController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *UnassignedController) notify(level, message string) {
	if c.notifier != nil {
		c.notifier.Notify(level, message)
	}
}

func claimFailure(err error) string {
	if errors.Is(err, workitem.ErrMissingUser) {
		return "Set user.id in the config to volunteer for work items"
	}
	return api.Message(err, ClaimFailedMessage)
}
