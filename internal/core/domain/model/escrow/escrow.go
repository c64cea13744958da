package escrow

import (
	"errors"
	"fmt"
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var (
	// ErrEscrowIsNotConstructed is returned when an Escrow instance was not
	// created through NewEscrow or RestoreEscrow.
	ErrEscrowIsNotConstructed = errors.New("escrow must be created via NewEscrow or RestoreEscrow")

	// ErrNotHeld is returned when a release or refund hits an escrow that is
	// not in held status. The hold ends exactly once.
	ErrNotHeld = errors.New("escrow is not held")
)

// Escrow freezes an order's funds between payment confirmation and
// settlement. It is keyed one-to-one to its order.
//
// Escrow follows these invariants:
//   - The held amount never changes after the hold
//   - held moves to released or refunded exactly once; both are final
//   - The reason the hold ended is recorded with the closing timestamp
//
// The repository mirrors the one-shot rule with a status-guarded conditional
// update, so a racing release and refund cannot both win.
type Escrow struct {
	// id is the unique identifier of the escrow
	id kernel.UUID

	// orderID is the order whose funds are held (unique per order)
	orderID kernel.UUID

	// amount is the frozen money, the order's display total
	amount kernel.Money

	// status tracks the one-shot hold lifecycle
	status Status

	// heldAt is when the funds were frozen
	heldAt time.Time

	// releasedAt and refundedAt record how and when the hold ended
	releasedAt *time.Time
	refundedAt *time.Time

	// releaseReason explains why the hold ended
	releaseReason string

	// guard ensures the escrow was properly constructed
	guard guard.ConstructorGuard
}

// NewEscrow freezes the given amount for an order.
//
// Parameters:
//   - id: unique identifier for the escrow
//   - orderID: the order whose funds are held
//   - amount: the money to freeze
//   - now: the hold instant
//
// Returns:
//   - *Escrow: a held escrow
//   - error: validation error if any parameter is invalid
func NewEscrow(id kernel.UUID, orderID kernel.UUID, amount kernel.Money, now time.Time) (*Escrow, error) {
	e := &Escrow{
		status: StatusHeld,
		heldAt: now,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		e.setID(id),
		e.setOrderID(orderID),
		e.setAmount(amount),
	); err != nil {
		return nil, err
	}

	return e, nil
}

// RestoreEscrow reconstructs an escrow from its persisted state.
func RestoreEscrow(
	id kernel.UUID,
	orderID kernel.UUID,
	amount kernel.Money,
	status Status,
	heldAt time.Time,
	releasedAt *time.Time,
	refundedAt *time.Time,
	releaseReason string,
) (*Escrow, error) {
	e := &Escrow{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		e.setID(id),
		e.setOrderID(orderID),
		e.setAmount(amount),
		e.setStatus(status),
	); err != nil {
		return nil, err
	}

	e.heldAt = heldAt
	e.releasedAt = releasedAt
	e.refundedAt = refundedAt
	e.releaseReason = releaseReason
	return e, nil
}

// Validate ensures the Escrow instance was properly constructed.
func (e *Escrow) Validate() error {
	if e == nil {
		return ErrEscrowIsNotConstructed
	}
	return e.guard.Validate(ErrEscrowIsNotConstructed)
}

// ID returns the escrow's unique identifier.
func (e *Escrow) ID() kernel.UUID {
	return e.id
}

// OrderID returns the order whose funds are held.
func (e *Escrow) OrderID() kernel.UUID {
	return e.orderID
}

// Amount returns the frozen money.
func (e *Escrow) Amount() kernel.Money {
	return e.amount
}

// Status returns the hold status.
func (e *Escrow) Status() Status {
	return e.status
}

// HeldAt returns when the funds were frozen.
func (e *Escrow) HeldAt() time.Time {
	return e.heldAt
}

// ReleasedAt returns when the funds were released, nil otherwise.
func (e *Escrow) ReleasedAt() *time.Time {
	return e.releasedAt
}

// RefundedAt returns when the funds were refunded, nil otherwise.
func (e *Escrow) RefundedAt() *time.Time {
	return e.refundedAt
}

// ReleaseReason returns why the hold ended, empty while held.
func (e *Escrow) ReleaseReason() string {
	return e.releaseReason
}

// IsHeld reports whether the funds are still frozen.
func (e *Escrow) IsHeld() bool {
	return e.status == StatusHeld
}

// Release settles the hold towards seller, agent and platform.
//
// Returns:
//   - nil on success
//   - ErrNotHeld if the hold already ended
func (e *Escrow) Release(reason string, now time.Time) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.status != StatusHeld {
		return fmt.Errorf("%w: escrow for order %s is %s", ErrNotHeld, e.orderID, e.status)
	}

	e.status = StatusReleased
	e.releasedAt = &now
	e.releaseReason = reason
	return nil
}

// Refund sends the hold back to the buyer.
//
// Returns:
//   - nil on success
//   - ErrNotHeld if the hold already ended
func (e *Escrow) Refund(reason string, now time.Time) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.status != StatusHeld {
		return fmt.Errorf("%w: escrow for order %s is %s", ErrNotHeld, e.orderID, e.status)
	}

	e.status = StatusRefunded
	e.refundedAt = &now
	e.releaseReason = reason
	return nil
}

// setID validates and sets the escrow's unique identifier.
func (e *Escrow) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	e.id = id
	return nil
}

// setOrderID validates and sets the order reference.
func (e *Escrow) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	e.orderID = orderID
	return nil
}

// setAmount validates and sets the frozen money.
func (e *Escrow) setAmount(amount kernel.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	e.amount = amount
	return nil
}

// setStatus validates and sets the persisted status.
func (e *Escrow) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	e.status = status
	return nil
}
