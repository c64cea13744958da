package commands

import (
	"errors"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var ErrApproveReleaseCommandIsNotConstructed = errors.New(
	"ApproveReleaseCommand must be created via NewApproveReleaseCommand constructor",
)

// ApproveReleaseCommand represents an admin's decision to grant a release
// request and settle the order's escrow. Notes are optional on approval.
type ApproveReleaseCommand struct { //nolint:recvcheck //using for validation
	requestID kernel.UUID
	actor     kernel.Actor
	notes     string

	guard guard.ConstructorGuard
}

// NewApproveReleaseCommand creates a command to approve a release request.
// Validates the request ID and the actor.
func NewApproveReleaseCommand(
	requestID kernel.UUID,
	actorID kernel.UUID,
	role kernel.Role,
	notes string,
) (ApproveReleaseCommand, error) {
	approveCommand := ApproveReleaseCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		approveCommand.setRequestID(requestID),
		approveCommand.setActor(actorID, role),
	); err != nil {
		return ApproveReleaseCommand{}, err
	}

	approveCommand.notes = notes
	return approveCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrApproveReleaseCommandIsNotConstructed if validation fails.
func (c ApproveReleaseCommand) Validate() error {
	return c.guard.Validate(ErrApproveReleaseCommandIsNotConstructed)
}

// RequestID returns the release request being decided.
func (c ApproveReleaseCommand) RequestID() kernel.UUID {
	return c.requestID
}

// Actor returns who decides the request.
func (c ApproveReleaseCommand) Actor() kernel.Actor {
	return c.actor
}

// Notes returns the optional decision notes.
func (c ApproveReleaseCommand) Notes() string {
	return c.notes
}

func (c *ApproveReleaseCommand) setRequestID(requestID kernel.UUID) error {
	if err := requestID.Validate(); err != nil {
		return err
	}

	c.requestID = requestID
	return nil
}

func (c *ApproveReleaseCommand) setActor(actorID kernel.UUID, role kernel.Role) error {
	actor, err := kernel.NewActor(actorID, role)
	if err != nil {
		return err
	}

	c.actor = actor
	return nil
}
