package ports

import (
	"context"

	"settlement/internal/core/domain/events"
)

// EventPublisher hands committed domain events to the notification layer.
//
// Publishing is fire-and-forget relative to the settlement transaction:
// implementations log failures and never return them, so a broken consumer
// cannot roll back persisted money movement. Handlers call Publish strictly
// after their unit of work commits.
type EventPublisher interface {
	Publish(ctx context.Context, domainEvents ...events.DomainEvent)
}
