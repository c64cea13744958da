package commands

import (
	"errors"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var (
	ErrRejectReleaseCommandIsNotConstructed = errors.New(
		"RejectReleaseCommand must be created via NewRejectReleaseCommand constructor",
	)
	ErrDecisionNotesAreRequired = errors.New("decision notes are required to reject a request")
)

// RejectReleaseCommand represents an admin's decision to decline a release
// request. The escrow stays held and a new request may be filed afterwards.
type RejectReleaseCommand struct { //nolint:recvcheck //using for validation
	requestID kernel.UUID
	actor     kernel.Actor
	notes     string

	guard guard.ConstructorGuard
}

// NewRejectReleaseCommand creates a command to reject a release request.
// Validates the request ID, the actor and that notes explain the decision.
func NewRejectReleaseCommand(
	requestID kernel.UUID,
	actorID kernel.UUID,
	role kernel.Role,
	notes string,
) (RejectReleaseCommand, error) {
	rejectCommand := RejectReleaseCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		rejectCommand.setRequestID(requestID),
		rejectCommand.setActor(actorID, role),
		rejectCommand.setNotes(notes),
	); err != nil {
		return RejectReleaseCommand{}, err
	}

	return rejectCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRejectReleaseCommandIsNotConstructed if validation fails.
func (c RejectReleaseCommand) Validate() error {
	return c.guard.Validate(ErrRejectReleaseCommandIsNotConstructed)
}

// RequestID returns the release request being decided.
func (c RejectReleaseCommand) RequestID() kernel.UUID {
	return c.requestID
}

// Actor returns who decides the request.
func (c RejectReleaseCommand) Actor() kernel.Actor {
	return c.actor
}

// Notes returns the reason the request is declined.
func (c RejectReleaseCommand) Notes() string {
	return c.notes
}

func (c *RejectReleaseCommand) setRequestID(requestID kernel.UUID) error {
	if err := requestID.Validate(); err != nil {
		return err
	}

	c.requestID = requestID
	return nil
}

func (c *RejectReleaseCommand) setActor(actorID kernel.UUID, role kernel.Role) error {
	actor, err := kernel.NewActor(actorID, role)
	if err != nil {
		return err
	}

	c.actor = actor
	return nil
}

func (c *RejectReleaseCommand) setNotes(notes string) error {
	if notes == "" {
		return ErrDecisionNotesAreRequired
	}

	c.notes = notes
	return nil
}
