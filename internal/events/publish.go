package events

import (
	"log/slog"
	"time"
)

// PublishWithRetry attempts to publish an event up to maxRetries times with
// exponential backoff (50ms, 100ms, 200ms, ...). A nil publisher is a no-op
// so writers can publish unconditionally.
//
// Live updates are best effort: callers log the returned error and carry on.
func PublishWithRetry(publisher EventPublisher, event Event, maxRetries int) error {
	if publisher == nil {
		return nil
	}

	var lastErr error
	baseDelay := 50 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := publisher.SendEvent(event)
		if err == nil {
			if attempt > 0 {
				slog.Debug("event published after retry",
					"attempt", attempt+1,
					"event_type", event.Type,
					"workspace", event.WorkspaceSlug)
			}
			return nil
		}
		lastErr = err

		if attempt < maxRetries-1 {
			delay := baseDelay * (1 << attempt)
			slog.Debug("event publish failed, retrying",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"retry_delay", delay,
				"error", err)
			time.Sleep(delay)
		}
	}

	slog.Warn("event publish failed after all retries",
		"attempts", maxRetries,
		"event_type", event.Type,
		"workspace", event.WorkspaceSlug,
		"issue_id", event.IssueID,
		"error", lastErr)

	return lastErr
}
