// Package launcher runs the interactive views.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/ticks/internal/app"
)

// drainTimeout bounds how long shutdown waits for the program after a signal
const drainTimeout = 2 * time.Second

// Launch runs model until it quits or the process is interrupted. Live
// updates are fed into the app caches for as long as the program runs.
func Launch(ctx context.Context, a *app.App, model tea.Model, opts ...tea.ProgramOption) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watchCtx, stopWatch := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := a.Watch(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("live updates stopped", "error", err)
		}
	}()
	defer func() {
		stopWatch()
		<-watchDone
	}()

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errChan <- err
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("error running program: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, cleaning up")
		select {
		case <-errChan:
		case <-time.After(drainTimeout):
			slog.Warn("program did not exit in time")
		}
	}
	return nil
}
