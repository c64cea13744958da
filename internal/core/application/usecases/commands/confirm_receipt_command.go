package commands

import (
	"errors"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var ErrConfirmReceiptCommandIsNotConstructed = errors.New(
	"ConfirmReceiptCommand must be created via NewConfirmReceiptCommand constructor",
)

// ConfirmReceiptCommand represents the buyer confirming they received the
// goods, which completes the order and settles the escrow without waiting
// for the grace period.
type ConfirmReceiptCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

// NewConfirmReceiptCommand creates a command for the buyer's receipt
// confirmation. Validates the order ID and the actor.
func NewConfirmReceiptCommand(orderID kernel.UUID, actorID kernel.UUID, role kernel.Role) (ConfirmReceiptCommand, error) {
	confirmCommand := ConfirmReceiptCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		confirmCommand.setOrderID(orderID),
		confirmCommand.setActor(actorID, role),
	); err != nil {
		return ConfirmReceiptCommand{}, err
	}

	return confirmCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrConfirmReceiptCommandIsNotConstructed if validation fails.
func (c ConfirmReceiptCommand) Validate() error {
	return c.guard.Validate(ErrConfirmReceiptCommandIsNotConstructed)
}

// OrderID returns the order being completed.
func (c ConfirmReceiptCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns who confirms the receipt.
func (c ConfirmReceiptCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *ConfirmReceiptCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ConfirmReceiptCommand) setActor(actorID kernel.UUID, role kernel.Role) error {
	actor, err := kernel.NewActor(actorID, role)
	if err != nil {
		return err
	}

	c.actor = actor
	return nil
}
