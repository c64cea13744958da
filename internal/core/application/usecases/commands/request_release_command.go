package commands

import (
	"errors"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var (
	ErrRequestReleaseCommandIsNotConstructed = errors.New(
		"RequestReleaseCommand must be created via NewRequestReleaseCommand constructor",
	)
	ErrReasonIsRequired = errors.New("reason is required")
)

// RequestReleaseCommand represents a party asking for the escrowed funds of
// a delivered order to be paid out. The request itself moves no money; an
// admin decides it.
type RequestReleaseCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   kernel.Actor
	reason  string

	guard guard.ConstructorGuard
}

// NewRequestReleaseCommand creates a command to file a release request.
// Validates the order ID, the actor and that a reason is given.
func NewRequestReleaseCommand(
	orderID kernel.UUID,
	actorID kernel.UUID,
	role kernel.Role,
	reason string,
) (RequestReleaseCommand, error) {
	requestCommand := RequestReleaseCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		requestCommand.setOrderID(orderID),
		requestCommand.setActor(actorID, role),
		requestCommand.setReason(reason),
	); err != nil {
		return RequestReleaseCommand{}, err
	}

	return requestCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRequestReleaseCommandIsNotConstructed if validation fails.
func (c RequestReleaseCommand) Validate() error {
	return c.guard.Validate(ErrRequestReleaseCommandIsNotConstructed)
}

// OrderID returns the order whose funds are requested.
func (c RequestReleaseCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns the requesting party.
func (c RequestReleaseCommand) Actor() kernel.Actor {
	return c.actor
}

// Reason returns the requester's motivation.
func (c RequestReleaseCommand) Reason() string {
	return c.reason
}

func (c *RequestReleaseCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RequestReleaseCommand) setActor(actorID kernel.UUID, role kernel.Role) error {
	actor, err := kernel.NewActor(actorID, role)
	if err != nil {
		return err
	}

	c.actor = actor
	return nil
}

func (c *RequestReleaseCommand) setReason(reason string) error {
	if reason == "" {
		return ErrReasonIsRequired
	}

	c.reason = reason
	return nil
}
