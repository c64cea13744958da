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
	"settlement/internal/core/ports"
	"settlement/internal/pkg/errs"
)

// ErrEscrowAlreadyHeld is returned when an order already carries an escrow
// row, held or closed. Funds are taken at most once per order.
var ErrEscrowAlreadyHeld = errors.New("escrow is already held for this order")

// HoldEscrowCommandHandler handles the business logic for funding escrow.
// The funding path depends on the order's variant: wallet-funded variants
// debit the buyer's balance, proof-funded variants only record the hold and
// require an admin actor. Either way the order moves to "confirmed" and a
// held escrow row for the display total is created in the same transaction.
type HoldEscrowCommandHandler struct {
	uowFactory FundingUoWFactory
	publisher  ports.EventPublisher
}

// NewHoldEscrowCommandHandler creates a handler for escrow hold operations.
func NewHoldEscrowCommandHandler(uowFactory FundingUoWFactory, publisher ports.EventPublisher) HoldEscrowCommandHandler {
	return HoldEscrowCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the escrow hold command.
// Returns ErrEscrowAlreadyHeld when the order was funded before, and
// wallet.ErrInsufficientFunds when the buyer's balance cannot cover the
// display total.
func (h HoldEscrowCommandHandler) Handle(ctx context.Context, cmd HoldEscrowCommand) error {
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

	escrowRepo := uow.EscrowRepository()
	if _, err = escrowRepo.GetByOrderID(ctx, cmd.OrderID()); err == nil {
		return fmt.Errorf("%w: order %s", ErrEscrowAlreadyHeld, cmd.OrderID())
	} else if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	if ord.Variant().Policy().Funding() == order.FundingProof && !cmd.Actor().Is(kernel.RoleAdmin) {
		return fmt.Errorf("%w: payment proof confirmation requires an admin", order.ErrRoleNotAllowed)
	}

	from := ord.Status()
	effect, err := ord.TransitionTo(order.Confirmed, cmd.Actor(), now, 0)
	if err != nil {
		return err
	}

	if effect != order.EffectHoldEscrow {
		return fmt.Errorf("%w: %s order cannot take a payment hold", order.ErrIllegalTransition, from)
	}

	if ord.Variant().Policy().Funding() == order.FundingWallet {
		if err = uow.WalletRepository().Debit(ctx, ord.Buyer(), ord.DisplayTotal()); err != nil {
			return err
		}
	}

	held, err := escrow.NewEscrow(kernel.NewUUID(), cmd.OrderID(), ord.DisplayTotal(), now)
	if err != nil {
		return err
	}

	if err = escrowRepo.Add(ctx, held); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx, events.OrderStatusChanged{OrderID: ord.ID(), From: from, To: ord.Status()})
	return nil
}
