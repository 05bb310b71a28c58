// Package cli holds what every ticks command shares: the application
// context, output formatting and exit codes.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/ticks/internal/app"
	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/events"
)

// CLI represents the CLI application context
type CLI struct {
	App    *app.App
	Config *config.Config
	owned  bool
}

type appKey struct{}

// WithApp makes commands run against a prebuilt App instead of loading the config
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// GetCLIFromContext returns the App injected with WithApp, or builds one.
// live connects to the daemon so caches receive change events.
func GetCLIFromContext(ctx context.Context, live bool, opts ...app.Option) (*CLI, error) {
	if a, ok := ctx.Value(appKey{}).(*app.App); ok && a != nil {
		return &CLI{App: a, Config: a.Config()}, nil
	}
	return NewCLI(ctx, live, opts...)
}

// NewCLI loads the config and builds the App. The daemon connection is
// optional: when it cannot be reached the CLI works without live updates.
func NewCLI(ctx context.Context, live bool, opts ...app.Option) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if live && !cfg.Daemon.Disabled {
		if ec := connectDaemon(ctx, cfg.Daemon.Socket); ec != nil {
			opts = append(opts, app.WithEventPublisher(ec))
		}
	}

	a, err := app.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &CLI{App: a, Config: cfg, owned: true}, nil
}

func connectDaemon(ctx context.Context, socket string) events.EventPublisher {
	client, err := events.NewClient(socket)
	if err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		slog.Warn("failed to create daemon client", "message", daemonErr.Message, "hint", daemonErr.Hint)
		return nil
	}
	if err := client.Connect(ctx); err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		slog.Info("continuing without live updates", "message", daemonErr.Message, "hint", daemonErr.Hint)
		_ = client.Close()
		return nil
	}
	return client
}

// Close releases the App when the CLI built it
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	return c.App.Close()
}
