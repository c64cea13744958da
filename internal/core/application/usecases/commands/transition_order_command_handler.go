package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/services"
	"settlement/internal/core/ports"
	"settlement/internal/pkg/errs"
)

// TransitionOrderCommandHandler handles the plain lifecycle edges of an
// order: pickup, delivery progress, cancellations, disputes and their
// resolution. Cancellation edges refund the held escrow to the buyer inside
// the same transaction. Edges whose effect is a hold, a claim or a release
// are rejected here; they run through their dedicated commands.
type TransitionOrderCommandHandler struct {
	uowFactory FundingUoWFactory
	publisher  ports.EventPublisher
	grace      time.Duration
}

// NewTransitionOrderCommandHandler creates a handler for lifecycle edges.
// The grace duration overrides the variant's release wait when positive.
func NewTransitionOrderCommandHandler(
	uowFactory FundingUoWFactory,
	publisher ports.EventPublisher,
	grace time.Duration,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		grace:      grace,
	}
}

// Handle processes the transition command.
// Resolving a dispute back to "confirmed" re-establishes the escrow hold
// when the dispute originated before payment confirmation, so every
// confirmed order carries held funds.
func (h TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
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
	effect, err := ord.TransitionTo(cmd.Target(), cmd.Actor(), now, h.grace)
	if err != nil {
		return err
	}

	switch effect {
	case order.EffectHoldEscrow, order.EffectClaimAgent, order.EffectReleaseEscrow:
		return fmt.Errorf("%w: %s to %s runs through its own operation", order.ErrIllegalTransition, from, cmd.Target())
	case order.EffectNone, order.EffectRefundEscrow, order.EffectScheduleGraceCheck:
	}

	domainEvents := []events.DomainEvent{
		events.OrderStatusChanged{OrderID: ord.ID(), From: from, To: ord.Status()},
	}

	if effect == order.EffectRefundEscrow {
		refunded, err := h.refundHeld(ctx, uow, ord, now)
		if err != nil {
			return err
		}
		if refunded != nil {
			domainEvents = append(domainEvents, events.EscrowRefunded{OrderID: ord.ID(), Amount: refunded.Amount()})
		}
	}

	if from == order.Disputed && cmd.Target() == order.Confirmed {
		if err = h.ensureEscrow(ctx, uow, ord, now); err != nil {
			return err
		}
	}

	if err = orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx, domainEvents...)
	return nil
}

// refundHeld returns the order's held amount to the buyer. Orders that were
// disputed before payment confirmation cancel without an escrow row; those
// report nil without moving money.
func (h TransitionOrderCommandHandler) refundHeld(
	ctx context.Context,
	uow FundingUoW,
	ord *order.Order,
	now time.Time,
) (*escrow.Escrow, error) {
	held, err := uow.EscrowRepository().GetByOrderID(ctx, ord.ID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}

	refundAmount, err := services.NewSettlementSplitter().Refund(ord, held)
	if err != nil {
		return nil, err
	}

	if err = held.Refund("order cancelled", now); err != nil {
		return nil, err
	}

	if err = uow.EscrowRepository().Update(ctx, held); err != nil {
		return nil, err
	}

	if err = uow.WalletRepository().Credit(ctx, ord.Buyer(), refundAmount); err != nil {
		return nil, err
	}

	return held, nil
}

// ensureEscrow re-establishes the hold when a dispute resolution confirms an
// order that never got one, funding it the same way the hold operation
// would.
func (h TransitionOrderCommandHandler) ensureEscrow(
	ctx context.Context,
	uow FundingUoW,
	ord *order.Order,
	now time.Time,
) error {
	if _, err := uow.EscrowRepository().GetByOrderID(ctx, ord.ID()); err == nil {
		return nil
	} else if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	if ord.Variant().Policy().Funding() == order.FundingWallet {
		if err := uow.WalletRepository().Debit(ctx, ord.Buyer(), ord.DisplayTotal()); err != nil {
			return err
		}
	}

	held, err := escrow.NewEscrow(kernel.NewUUID(), ord.ID(), ord.DisplayTotal(), now)
	if err != nil {
		return err
	}

	return uow.EscrowRepository().Add(ctx, held)
}
