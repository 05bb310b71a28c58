package app

import (
	"log/slog"
	"net/http"

	"github.com/thenoetrevino/ticks/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient events.EventPublisher
	logger      *slog.Logger
	httpClient  *http.Client
	notify      events.NotifyFunc
}

// WithEventPublisher sets the live-update connection caches listen on
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for API calls
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *appConfig) {
		cfg.httpClient = hc
	}
}

// WithNotifyFunc receives live-update connection notices
func WithNotifyFunc(fn events.NotifyFunc) Option {
	return func(cfg *appConfig) {
		cfg.notify = fn
	}
}
