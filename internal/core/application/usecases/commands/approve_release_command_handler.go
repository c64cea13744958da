package commands

import (
	"context"
	"fmt"
	"time"

	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/ports"
)

// ApproveReleaseCommandHandler handles the admin approval of a release
// request: the request is decided, the escrow settles to seller, agent and
// platform, and the order completes, all in one transaction.
//
// Requests filed by the seller or the agent are only approvable once the
// order's grace period elapsed; the buyer's own request waives that window.
type ApproveReleaseCommandHandler struct {
	uowFactory SettlementUoWFactory
	publisher  ports.EventPublisher
}

// NewApproveReleaseCommandHandler creates a handler for release approvals.
func NewApproveReleaseCommandHandler(uowFactory SettlementUoWFactory, publisher ports.EventPublisher) ApproveReleaseCommandHandler {
	return ApproveReleaseCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the approval command.
// Returns payout.ErrRequestNotPending for already-decided requests and
// order.ErrReleaseNotEligible while the grace period still runs.
func (h ApproveReleaseCommandHandler) Handle(ctx context.Context, cmd ApproveReleaseCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !cmd.Actor().Is(kernel.RoleAdmin) {
		return fmt.Errorf("%w: release decisions require an admin", order.ErrRoleNotAllowed)
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	requestRepo := uow.ReleaseRequestRepository()
	request, err := requestRepo.Get(ctx, cmd.RequestID())
	if err != nil {
		return err
	}

	if err = request.Approve(cmd.Actor(), cmd.Notes(), now); err != nil {
		return err
	}

	orderRepo := uow.OrderRepository()
	ord, err := orderRepo.Get(ctx, request.OrderID())
	if err != nil {
		return err
	}

	if !request.RequestedBy().Is(kernel.RoleBuyer) && ord.Status() == order.Delivered && !ord.IsReleaseEligible(now) {
		return fmt.Errorf("%w: grace period active for order %s", order.ErrReleaseNotEligible, ord.ID())
	}

	from := ord.Status()
	if _, err = ord.TransitionTo(order.Completed, cmd.Actor(), now, 0); err != nil {
		return err
	}

	split, err := releaseSettlement(ctx, uow, ord, "release request approved", now)
	if err != nil {
		return err
	}

	if err = requestRepo.Update(ctx, request); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx,
		events.ReleaseDecided{RequestID: request.ID(), Approved: true},
		events.EscrowReleased{
			OrderID:          ord.ID(),
			SellerAmount:     split.SellerAmount(),
			AgentAmount:      split.AgentAmount(),
			CommissionAmount: split.PlatformAmount(),
		},
		events.OrderStatusChanged{OrderID: ord.ID(), From: from, To: ord.Status()},
	)
	return nil
}
