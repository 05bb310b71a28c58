package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/ticks/internal/events"
)

// EventHandler consumes relayed events. *Store implements it.
type EventHandler interface {
	HandleEvent(ctx context.Context, event events.Event)
}

// Watch listens on publisher and hands every event to each handler until ctx
// is done or the publisher stops. One Watch per publisher: the daemon
// connection has a single reader.
//
// Data is refreshed on reconnect only; there is no focus hook.
func Watch(ctx context.Context, publisher events.EventPublisher, handlers ...EventHandler) error {
	if publisher == nil {
		return nil
	}

	ch, err := publisher.Listen(ctx)
	if err != nil {
		return fmt.Errorf("failed to listen for events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-ch:
			if !ok {
				slog.Debug("event stream closed, live updates stopped")
				return nil
			}
			for _, h := range handlers {
				h.HandleEvent(ctx, event)
			}
		}
	}
}
