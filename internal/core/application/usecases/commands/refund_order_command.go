package commands

import (
	"errors"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var ErrRefundOrderCommandIsNotConstructed = errors.New(
	"RefundOrderCommand must be created via NewRefundOrderCommand constructor",
)

// RefundOrderCommand represents an admin sending an order's held funds back
// to the buyer and cancelling the order.
type RefundOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   kernel.Actor
	reason  string

	guard guard.ConstructorGuard
}

// NewRefundOrderCommand creates a command to refund an order.
// Validates the order ID, the actor and that a reason is given.
func NewRefundOrderCommand(
	orderID kernel.UUID,
	actorID kernel.UUID,
	role kernel.Role,
	reason string,
) (RefundOrderCommand, error) {
	refundCommand := RefundOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		refundCommand.setOrderID(orderID),
		refundCommand.setActor(actorID, role),
		refundCommand.setReason(reason),
	); err != nil {
		return RefundOrderCommand{}, err
	}

	return refundCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRefundOrderCommandIsNotConstructed if validation fails.
func (c RefundOrderCommand) Validate() error {
	return c.guard.Validate(ErrRefundOrderCommandIsNotConstructed)
}

// OrderID returns the order being refunded.
func (c RefundOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns who orders the refund.
func (c RefundOrderCommand) Actor() kernel.Actor {
	return c.actor
}

// Reason returns why the funds go back.
func (c RefundOrderCommand) Reason() string {
	return c.reason
}

func (c *RefundOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RefundOrderCommand) setActor(actorID kernel.UUID, role kernel.Role) error {
	actor, err := kernel.NewActor(actorID, role)
	if err != nil {
		return err
	}

	c.actor = actor
	return nil
}

func (c *RefundOrderCommand) setReason(reason string) error {
	if reason == "" {
		return ErrReasonIsRequired
	}

	c.reason = reason
	return nil
}
