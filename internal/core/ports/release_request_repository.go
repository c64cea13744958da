package ports

import (
	"context"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/payout"
)

// ReleaseRequestRepository defines the persistence contract for release
// requests. At most one pending request exists per order; storage backs the
// aggregate rule with a partial unique index.
type ReleaseRequestRepository interface {
	// Add persists a newly filed request.
	Add(ctx context.Context, aggregate *payout.ReleaseRequest) error

	// Update persists a decision.
	Update(ctx context.Context, aggregate *payout.ReleaseRequest) error

	// Get retrieves a request by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*payout.ReleaseRequest, error)

	// GetPendingByOrderID retrieves the order's open request, or
	// errs.ObjectNotFoundError when none is pending.
	GetPendingByOrderID(ctx context.Context, orderID kernel.UUID) (*payout.ReleaseRequest, error)
}
