package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to a logger at debug level instead of a bus.
// It is used when no NATS server is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, event any) error {
	if p.Logger != nil {
		p.Logger.DebugContext(ctx, "event", "topic", topic, "payload", event)
	}
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
