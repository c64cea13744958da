package commands

import (
	"context"
	"fmt"

	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/ports"
)

// ClaimOrderCommandHandler handles the atomic agent claim.
// The claim is one conditional update in storage, so concurrent agents
// racing for the same order resolve to exactly one winner without locks.
// The loser re-reads the order to report why the claim failed.
type ClaimOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewClaimOrderCommandHandler creates a handler for order claims.
func NewClaimOrderCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the claim command.
// Returns order.ErrAlreadyClaimed when another agent holds the order, and
// order.ErrIllegalTransition when the order is not in a claimable status.
func (h ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	won, err := orderRepo.Claim(ctx, cmd.OrderID(), cmd.AgentID())
	if err != nil {
		return err
	}

	if !won {
		ord, err := orderRepo.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		if ord.Agent() != nil {
			return fmt.Errorf("%w: order %s", order.ErrAlreadyClaimed, cmd.OrderID())
		}

		return fmt.Errorf("%w: %s order is not claimable", order.ErrIllegalTransition, ord.Status())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx,
		events.OrderStatusChanged{OrderID: cmd.OrderID(), From: order.Confirmed, To: order.Assigned},
		events.OrderClaimed{OrderID: cmd.OrderID(), AgentID: cmd.AgentID()},
	)
	return nil
}
