package commands

import (
	"errors"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var ErrHoldEscrowCommandIsNotConstructed = errors.New(
	"HoldEscrowCommand must be created via NewHoldEscrowCommand constructor",
)

// HoldEscrowCommand represents a request to fund an order's escrow and
// confirm the payment. The actor is the buyer paying from their wallet, or
// an admin approving an out-of-band payment proof.
type HoldEscrowCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

// NewHoldEscrowCommand creates a command to hold escrow for an order.
// Validates the order ID and that the actor is well-formed.
func NewHoldEscrowCommand(orderID kernel.UUID, actorID kernel.UUID, role kernel.Role) (HoldEscrowCommand, error) {
	holdCommand := HoldEscrowCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		holdCommand.setOrderID(orderID),
		holdCommand.setActor(actorID, role),
	); err != nil {
		return HoldEscrowCommand{}, err
	}

	return holdCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrHoldEscrowCommandIsNotConstructed if validation fails.
func (c HoldEscrowCommand) Validate() error {
	return c.guard.Validate(ErrHoldEscrowCommandIsNotConstructed)
}

// OrderID returns the order whose escrow is funded.
func (c HoldEscrowCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns who confirms the payment.
func (c HoldEscrowCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *HoldEscrowCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *HoldEscrowCommand) setActor(actorID kernel.UUID, role kernel.Role) error {
	actor, err := kernel.NewActor(actorID, role)
	if err != nil {
		return err
	}

	c.actor = actor
	return nil
}
