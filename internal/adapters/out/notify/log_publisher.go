// Package notify carries settlement events out of the engine. The only
// transport is the structured log: consumers tail it, and a lost event never
// rolls back the settlement that produced it.
package notify

import (
	"context"
	"log/slog"

	"settlement/internal/core/domain/events"
)

// LogEventPublisher writes domain events to the application log, one record
// per event, keyed by the event name.
type LogEventPublisher struct {
	logger *slog.Logger
}

// NewLogEventPublisher creates a publisher writing to the given logger.
func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{
		logger: logger.With("component", "event_publisher"),
	}
}

// Publish logs each event after the transaction that produced it committed.
// Publishing never fails: the settlement outcome is already durable.
func (p *LogEventPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) {
	for _, event := range domainEvents {
		p.logger.InfoContext(ctx, "domain event",
			"event", event.Name(),
			"payload", event,
		)
	}
}
