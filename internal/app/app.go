// Package app wires the API client, caches and services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/ticks/internal/api"
	"github.com/thenoetrevino/ticks/internal/cache"
	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/events"
	"github.com/thenoetrevino/ticks/internal/models"
	checklistsvc "github.com/thenoetrevino/ticks/internal/services/checklist"
	"github.com/thenoetrevino/ticks/internal/services/workitem"
)

// App holds all application services and provides dependency injection.
// Everything a command or the TUI needs is reached from here.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	eventClient events.EventPublisher

	Client     *api.Client
	Checklists *cache.ChecklistStore
	Unassigned *cache.UnassignedStore

	ChecklistService checklistsvc.Service
	WorkItemService  workitem.Service
}

// New creates the application container for cfg
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	o := appConfig{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := api.NewClient(cfg.Server.BaseURL,
		api.WithAPIKey(cfg.Server.APIKey),
		api.WithActor(cfg.User.ID),
		api.WithHTTPClient(o.httpClient),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	a := &App{
		cfg:         cfg,
		logger:      logger,
		eventClient: o.eventClient,
		Client:      client,
	}

	a.Checklists = cache.NewChecklistStore(client, cache.WithLogger(logger))
	a.ChecklistService = checklistsvc.NewService(client, a.Checklists, checklistsvc.WithLogger(logger))

	a.Unassigned = cache.NewUnassignedStore(func(ctx context.Context, key models.WorkspaceUserKey) ([]models.Issue, error) {
		return a.WorkItemService.ListUnassigned(ctx, key.WorkspaceSlug)
	}, cache.WithLogger(logger))
	a.WorkItemService = workitem.NewService(client, a.Unassigned, logger)

	if a.eventClient != nil && o.notify != nil {
		a.eventClient.SetNotifyFunc(o.notify)
	}
	return a, nil
}

// Config returns the configuration the app was built from
func (a *App) Config() *config.Config {
	return a.cfg
}

// ChecklistKey addresses the checklist of issueID in the configured workspace.
// An empty project falls back to the configured one.
func (a *App) ChecklistKey(projectID, issueID string) models.ChecklistKey {
	if projectID == "" {
		projectID = a.cfg.Project
	}
	return models.ChecklistKey{
		WorkspaceSlug: a.cfg.Workspace,
		ProjectID:     projectID,
		IssueID:       issueID,
	}
}

// UnassignedKey addresses the unassigned list of the configured workspace and user
func (a *App) UnassignedKey() models.WorkspaceUserKey {
	return models.WorkspaceUserKey{WorkspaceSlug: a.cfg.Workspace, UserID: a.cfg.User.ID}
}

// Watch feeds live updates into the caches until ctx is done.
// Without an event publisher it returns immediately.
func (a *App) Watch(ctx context.Context) error {
	if a.eventClient == nil {
		return nil
	}
	if err := a.eventClient.Subscribe(a.cfg.Workspace); err != nil {
		a.logger.Warn("failed to subscribe to live updates", "workspace", a.cfg.Workspace, "error", err)
	}
	return cache.Watch(ctx, a.eventClient, a.Checklists, a.Unassigned)
}

// Close stops the caches and the live-update connection
func (a *App) Close() error {
	a.Checklists.Close()
	a.Unassigned.Close()
	if a.eventClient != nil {
		return a.eventClient.Close()
	}
	return nil
}
