package events

import (
	"log/slog"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
)

// DomainEvent is the contract every published event payload satisfies.
// Handlers collect events during a transaction and hand them to the
// publisher port strictly after commit.
type DomainEvent interface {
	// Name returns the stable event name consumers subscribe to.
	Name() string
}

// OrderStatusChanged signals that an order moved along a lifecycle edge.
type OrderStatusChanged struct {
	OrderID kernel.UUID
	From    order.Status
	To      order.Status
}

// Name returns the stable event name.
func (OrderStatusChanged) Name() string { return "order.status_changed" }

// LogValue renders the payload for structured logging.
func (e OrderStatusChanged) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("order_id", e.OrderID.String()),
		slog.String("from", e.From.String()),
		slog.String("to", e.To.String()),
	)
}

// OrderClaimed signals that a delivery agent won the claim on an order.
type OrderClaimed struct {
	OrderID kernel.UUID
	AgentID kernel.UUID
}

// Name returns the stable event name.
func (OrderClaimed) Name() string { return "order.claimed" }

// LogValue renders the payload for structured logging.
func (e OrderClaimed) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("order_id", e.OrderID.String()),
		slog.String("agent_id", e.AgentID.String()),
	)
}

// EscrowReleased signals that held funds were split and paid out.
type EscrowReleased struct {
	OrderID          kernel.UUID
	SellerAmount     kernel.Money
	AgentAmount      kernel.Money
	CommissionAmount kernel.Money
}

// Name returns the stable event name.
func (EscrowReleased) Name() string { return "escrow.released" }

// LogValue renders the payload for structured logging.
func (e EscrowReleased) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("order_id", e.OrderID.String()),
		slog.String("seller_amount", e.SellerAmount.String()),
		slog.String("agent_amount", e.AgentAmount.String()),
		slog.String("commission_amount", e.CommissionAmount.String()),
	)
}

// EscrowRefunded signals that held funds went back to the buyer in full.
type EscrowRefunded struct {
	OrderID kernel.UUID
	Amount  kernel.Money
}

// Name returns the stable event name.
func (EscrowRefunded) Name() string { return "escrow.refunded" }

// LogValue renders the payload for structured logging.
func (e EscrowRefunded) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("order_id", e.OrderID.String()),
		slog.String("amount", e.Amount.String()),
	)
}

// ReleaseRequested signals that a party filed a release request.
type ReleaseRequested struct {
	RequestID kernel.UUID
	OrderID   kernel.UUID
}

// Name returns the stable event name.
func (ReleaseRequested) Name() string { return "release.requested" }

// LogValue renders the payload for structured logging.
func (e ReleaseRequested) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("request_id", e.RequestID.String()),
		slog.String("order_id", e.OrderID.String()),
	)
}

// ReleaseDecided signals that an admin (or the buyer's own confirmation)
// decided a release request.
type ReleaseDecided struct {
	RequestID kernel.UUID
	Approved  bool
}

// Name returns the stable event name.
func (ReleaseDecided) Name() string { return "release.decided" }

// LogValue renders the payload for structured logging.
func (e ReleaseDecided) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("request_id", e.RequestID.String()),
		slog.Bool("approved", e.Approved),
	)
}

// ReleaseEligible signals that a delivered order's grace period elapsed and
// the buyer should be prompted to confirm receipt. Emitted at most once per
// order by the eligibility sweep.
type ReleaseEligible struct {
	OrderID kernel.UUID
}

// Name returns the stable event name.
func (ReleaseEligible) Name() string { return "release.eligible" }

// LogValue renders the payload for structured logging.
func (e ReleaseEligible) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("order_id", e.OrderID.String()),
	)
}
