// Command ticks-daemon runs the live-update relay on its own, for use under
// a service manager.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/daemon"
	"github.com/thenoetrevino/ticks/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Under systemd stderr is the journal.
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Warn("falling back to info logging", "error", err)
	}
	logger := logging.Setup(os.Stderr, level)

	server, err := daemon.NewServer(cfg.Daemon.Socket, daemon.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	logger.Info("ticks daemon starting", "socket_path", cfg.Daemon.Socket, "pid", os.Getpid())

	if err := server.Start(ctx); err != nil {
		logger.Error("daemon error", "error", err)
		os.Exit(1)
	}

	snapshot := server.Metrics().Snapshot()
	logger.Info("ticks daemon shutting down gracefully",
		"events_relayed", snapshot.EventsRelayed,
		"events_dropped", snapshot.EventsDropped,
		"uptime", snapshot.Uptime)
}
