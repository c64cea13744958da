package commands

import (
	"errors"

	"settlement/internal/pkg/guard"
)

var ErrMarkReleaseEligibleCommandIsNotConstructed = errors.New(
	"MarkReleaseEligibleCommand must be created via NewMarkReleaseEligibleCommand constructor",
)

// MarkReleaseEligibleCommand triggers the eligibility sweep over delivered
// orders whose grace period elapsed. The sweep never releases funds; it only
// latches the notification flag so the buyer gets prompted exactly once.
//
// Example:
//
//	cmd := NewMarkReleaseEligibleCommand()
//	handler := NewMarkReleaseEligibleCommandHandler(uowFactory, publisher)
//	err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    log.Printf("No orders became eligible: %v", err)
//	}
type MarkReleaseEligibleCommand struct {
	guard guard.ConstructorGuard
}

// NewMarkReleaseEligibleCommand creates a new command to trigger the sweep.
// This is a parameterless command run on a schedule.
func NewMarkReleaseEligibleCommand() MarkReleaseEligibleCommand {
	return MarkReleaseEligibleCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrMarkReleaseEligibleCommandIsNotConstructed if validation fails.
func (c *MarkReleaseEligibleCommand) Validate() error {
	return c.guard.Validate(
		ErrMarkReleaseEligibleCommandIsNotConstructed,
	)
}
