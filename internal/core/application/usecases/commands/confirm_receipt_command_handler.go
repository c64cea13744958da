package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/payout"
	"settlement/internal/core/ports"
	"settlement/internal/pkg/errs"
)

// ConfirmReceiptCommandHandler handles the buyer's receipt confirmation.
// Confirmation completes the order and settles the escrow immediately: by
// accepting the goods the buyer waives their own dispute window, so the
// grace period does not apply. The decision trail stays complete: an open
// release request is rejected as superseded, and the confirmation itself is
// recorded as a request the buyer filed and approved in one step.
type ConfirmReceiptCommandHandler struct {
	uowFactory SettlementUoWFactory
	publisher  ports.EventPublisher
}

// NewConfirmReceiptCommandHandler creates a handler for receipt confirmations.
func NewConfirmReceiptCommandHandler(uowFactory SettlementUoWFactory, publisher ports.EventPublisher) ConfirmReceiptCommandHandler {
	return ConfirmReceiptCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the confirmation command.
// Only the order's own buyer may confirm; admins decide through release
// requests instead.
func (h ConfirmReceiptCommandHandler) Handle(ctx context.Context, cmd ConfirmReceiptCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !cmd.Actor().Is(kernel.RoleBuyer) {
		return fmt.Errorf("%w: receipt confirmation is the buyer's own action", order.ErrRoleNotAllowed)
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
	if _, err = ord.TransitionTo(order.Completed, cmd.Actor(), now, 0); err != nil {
		return err
	}

	domainEvents := make([]events.DomainEvent, 0, 5)

	requestRepo := uow.ReleaseRequestRepository()
	pending, err := requestRepo.GetPendingByOrderID(ctx, cmd.OrderID())
	switch {
	case err == nil:
		if err = pending.Reject(cmd.Actor(), "superseded by buyer confirmation", now); err != nil {
			return err
		}
		if err = requestRepo.Update(ctx, pending); err != nil {
			return err
		}
		domainEvents = append(domainEvents, events.ReleaseDecided{RequestID: pending.ID(), Approved: false})
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	confirmation, err := payout.NewReleaseRequest(kernel.NewUUID(), cmd.OrderID(), cmd.Actor(), "buyer confirmed receipt", now)
	if err != nil {
		return err
	}

	if err = confirmation.Approve(cmd.Actor(), "", now); err != nil {
		return err
	}

	if err = requestRepo.Add(ctx, confirmation); err != nil {
		return err
	}

	split, err := releaseSettlement(ctx, uow, ord, "buyer confirmed receipt", now)
	if err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	domainEvents = append(domainEvents,
		events.ReleaseRequested{RequestID: confirmation.ID(), OrderID: ord.ID()},
		events.ReleaseDecided{RequestID: confirmation.ID(), Approved: true},
		events.EscrowReleased{
			OrderID:          ord.ID(),
			SellerAmount:     split.SellerAmount(),
			AgentAmount:      split.AgentAmount(),
			CommissionAmount: split.PlatformAmount(),
		},
		events.OrderStatusChanged{OrderID: ord.ID(), From: from, To: ord.Status()},
	)
	h.publisher.Publish(ctx, domainEvents...)
	return nil
}
