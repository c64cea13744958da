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

var (
	// ErrOrderNotDelivered is returned when funds are requested for an order
	// that has not reached the delivered stage.
	ErrOrderNotDelivered = errors.New("order is not delivered")

	// ErrDuplicatePendingRequest is returned when the order already has an
	// undecided release request.
	ErrDuplicatePendingRequest = errors.New("a pending release request already exists for this order")
)

// RequestReleaseCommandHandler handles the filing of release requests.
// Only parties to the order may file, the order must have reached delivery,
// and at most one request per order can be pending at a time.
type RequestReleaseCommandHandler struct {
	uowFactory RequestUoWFactory
	publisher  ports.EventPublisher
}

// NewRequestReleaseCommandHandler creates a handler for release requests.
func NewRequestReleaseCommandHandler(uowFactory RequestUoWFactory, publisher ports.EventPublisher) RequestReleaseCommandHandler {
	return RequestReleaseCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the release request command.
// Returns ErrOrderNotDelivered before delivery and ErrDuplicatePendingRequest
// while an earlier request awaits a decision.
func (h RequestReleaseCommandHandler) Handle(ctx context.Context, cmd RequestReleaseCommand) error {
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

	ord, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if !ord.IsParty(cmd.Actor()) {
		return fmt.Errorf("%w: only order parties may request release", order.ErrRoleNotAllowed)
	}

	if ord.Status() != order.Delivered && ord.Status() != order.Completed {
		return fmt.Errorf("%w: order %s is %s", ErrOrderNotDelivered, ord.ID(), ord.Status())
	}

	requestRepo := uow.ReleaseRequestRepository()
	if _, err = requestRepo.GetPendingByOrderID(ctx, cmd.OrderID()); err == nil {
		return fmt.Errorf("%w: order %s", ErrDuplicatePendingRequest, cmd.OrderID())
	} else if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	request, err := payout.NewReleaseRequest(kernel.NewUUID(), cmd.OrderID(), cmd.Actor(), cmd.Reason(), now)
	if err != nil {
		return err
	}

	if err = requestRepo.Add(ctx, request); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx, events.ReleaseRequested{RequestID: request.ID(), OrderID: cmd.OrderID()})
	return nil
}
