package ports

import (
	"context"

	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
)

// EscrowRepository defines the persistence contract for escrow aggregates.
// Escrows are addressed by their order: the ledger holds at most one row per
// order, and a row leaves the held status exactly once.
type EscrowRepository interface {
	// Add persists a newly held escrow. Storage enforces the one-row-per-order
	// rule with a unique constraint on the order reference.
	Add(ctx context.Context, aggregate *escrow.Escrow) error

	// Update persists a release or refund. The write is guarded on the row
	// still being held, so a second close attempt that slipped past the
	// aggregate loses here and surfaces escrow.ErrNotHeld.
	Update(ctx context.Context, aggregate *escrow.Escrow) error

	// GetByOrderID retrieves the escrow held for an order.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*escrow.Escrow, error)
}
