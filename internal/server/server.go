// Package server serves the checklist and work item REST API over SQLite.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/ticks/internal/database"
	"github.com/thenoetrevino/ticks/internal/events"
)

const (
	headerAPIKey = "X-API-Key"
	headerActor  = "X-User-ID"

	// publishRetries bounds event publishing after a write
	publishRetries = 3

	shutdownTimeout = 5 * time.Second
)

// Server is the checklist API server
type Server struct {
	store     database.DataStore
	router    *gin.Engine
	publisher events.EventPublisher
	logger    *slog.Logger
	apiKey    string
	now       func() time.Time

	publishing sync.WaitGroup
}

// Option configures a Server
type Option func(*Server)

// WithPublisher publishes a change event after every write
func WithPublisher(p events.EventPublisher) Option {
	return func(s *Server) {
		s.publisher = p
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAPIKey requires every request to carry the key in X-API-Key
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithClock replaces time.Now for completion and audit stamps
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a server backed by store
func New(store database.DataStore, opts ...Option) *Server {
	s := &Server{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.router = router

	api := router.Group("/api/workspaces/:slug", s.authenticate())
	{
		api.GET("/issues/", s.handleListIssues)
		api.PATCH("/projects/:project/issues/:issue/", s.requireIssue(), s.handleUpdateIssue)

		checklist := api.Group("/projects/:project/work-items/:issue/checklist", s.requireIssue())
		checklist.GET("/", s.handleListChecklist)
		checklist.POST("/", s.handleCreateItem)
		checklist.GET("/:item/", s.handleGetItem)
		checklist.PATCH("/:item/", s.handleUpdateItem)
		checklist.DELETE("/:item/", s.handleDeleteItem)
	}

	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	err := <-errCh
	s.Wait()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Wait blocks until change events already handed to the publisher are sent
func (s *Server) Wait() {
	s.publishing.Wait()
}

// publish relays a change event in the background; failures only reach the log
func (s *Server) publish(event events.Event) {
	if s.publisher == nil {
		return
	}
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		if err := events.PublishWithRetry(s.publisher, event, publishRetries); err != nil {
			s.logger.Warn("failed to publish change event", "type", event.Type, "issue_id", event.IssueID, "error", err)
		}
	}()
}

// stamp returns the current time in UTC
func (s *Server) stamp() time.Time {
	return s.now().UTC()
}
