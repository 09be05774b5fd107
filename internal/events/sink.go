package events

import (
	"context"
	"log/slog"
)

type Event interface {
	EventName() string
}

// Sink receives domain events. Publish must not block the caller for long
// and must not fail the operation that produced the event.
type Sink interface {
	Publish(ctx context.Context, e Event)
}

// LogSink writes every event as a structured log record.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(ctx context.Context, e Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "domain event", "event", e.EventName(), "payload", e)
}
