package commands

import (
	"context"
	"fmt"
	"time"

	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/services"
	"settlement/internal/core/ports"
)

// RefundOrderCommandHandler handles the admin refund: the full held amount
// goes back to the buyer's wallet, the escrow closes as refunded, and the
// order cancels through a legal cancellation edge. Delivered orders cannot
// be refunded directly; they take the dispute path first.
type RefundOrderCommandHandler struct {
	uowFactory FundingUoWFactory
	publisher  ports.EventPublisher
}

// NewRefundOrderCommandHandler creates a handler for admin refunds.
func NewRefundOrderCommandHandler(uowFactory FundingUoWFactory, publisher ports.EventPublisher) RefundOrderCommandHandler {
	return RefundOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the refund command.
// Returns escrow.ErrNotHeld when the order's escrow already closed.
func (h RefundOrderCommandHandler) Handle(ctx context.Context, cmd RefundOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !cmd.Actor().Is(kernel.RoleAdmin) {
		return fmt.Errorf("%w: refunds require an admin", order.ErrRoleNotAllowed)
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	ord, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	from := ord.Status()
	if _, err = ord.TransitionTo(order.Cancelled, cmd.Actor(), now, 0); err != nil {
		return err
	}

	escrowRepo := uow.EscrowRepository()
	held, err := escrowRepo.GetByOrderID(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	refundAmount, err := services.NewSettlementSplitter().Refund(ord, held)
	if err != nil {
		return err
	}

	if err = held.Refund(cmd.Reason(), now); err != nil {
		return err
	}

	if err = escrowRepo.Update(ctx, held); err != nil {
		return err
	}

	if err = uow.WalletRepository().Credit(ctx, ord.Buyer(), refundAmount); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx,
		events.EscrowRefunded{OrderID: ord.ID(), Amount: refundAmount},
		events.OrderStatusChanged{OrderID: ord.ID(), From: from, To: ord.Status()},
	)
	return nil
}
