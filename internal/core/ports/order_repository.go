package ports

import (
	"context"
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Updates are guarded by the aggregate's version token: a lost race surfaces
// as errs.VersionIsInvalidError instead of silently overwriting.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using the
	// version the aggregate was loaded with as a compare-and-swap guard.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier, lines
	// included.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Claim assigns an agent to an order as one conditional update: it
	// succeeds only while the order has no agent and sits in the claimable
	// status. Reports false when another agent won the race or the order is
	// not claimable; the caller disambiguates by re-reading.
	Claim(ctx context.Context, orderID kernel.UUID, agentID kernel.UUID) (bool, error)

	// GetAllReleaseEligible retrieves delivered orders whose grace period
	// elapsed before now and that were not yet flagged as notified.
	// Used by the eligibility sweep.
	GetAllReleaseEligible(ctx context.Context, now time.Time) ([]*order.Order, error)
}
