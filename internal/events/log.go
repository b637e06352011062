package events

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// LogPublisher writes events to the structured log. It is used when no
// broker is configured.
type LogPublisher struct{}

// Publish logs ev at debug level.
func (LogPublisher) Publish(ctx context.Context, ev core.Event) error {
	slog.DebugContext(ctx, "change event",
		"type", ev.Type,
		"entity", ev.Entity,
		"record_id", ev.RecordID,
	)
	return nil
}
