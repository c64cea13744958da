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

// RejectReleaseCommandHandler handles the admin rejection of a release
// request. Money does not move; the order keeps its held escrow and the
// requester may file again with a better case.
type RejectReleaseCommandHandler struct {
	uowFactory ReleaseRequestUoWFactory
	publisher  ports.EventPublisher
}

// NewRejectReleaseCommandHandler creates a handler for release rejections.
func NewRejectReleaseCommandHandler(uowFactory ReleaseRequestUoWFactory, publisher ports.EventPublisher) RejectReleaseCommandHandler {
	return RejectReleaseCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the rejection command.
// Returns payout.ErrRequestNotPending for already-decided requests.
func (h RejectReleaseCommandHandler) Handle(ctx context.Context, cmd RejectReleaseCommand) error {
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

	if err = request.Reject(cmd.Actor(), cmd.Notes(), now); err != nil {
		return err
	}

	if err = requestRepo.Update(ctx, request); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx, events.ReleaseDecided{RequestID: request.ID(), Approved: false})
	return nil
}
