package commands

import (
	"context"
	"errors"
	"time"

	"settlement/internal/core/domain/events"
	"settlement/internal/core/ports"
	"settlement/internal/pkg/errs"
)

// ErrNoEligibleOrders is returned when the sweep finds no delivered order
// whose grace period elapsed since the last run.
var ErrNoEligibleOrders = errors.New("no orders reached release eligibility")

// MarkReleaseEligibleCommandHandler handles the scheduled eligibility sweep.
// Delivered orders past their grace period get their notification flag
// latched and a ReleaseEligible event; funds only move when a release is
// decided.
type MarkReleaseEligibleCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewMarkReleaseEligibleCommandHandler creates a handler for the sweep.
func NewMarkReleaseEligibleCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) MarkReleaseEligibleCommandHandler {
	return MarkReleaseEligibleCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the sweep command.
// An order that lost its version race to a concurrent confirmation or
// dispute is skipped; the next sweep re-reads it.
func (h MarkReleaseEligibleCommandHandler) Handle(ctx context.Context, cmd MarkReleaseEligibleCommand) error {
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
	eligible, err := orderRepo.GetAllReleaseEligible(ctx, now)
	if err != nil {
		return err
	}

	if len(eligible) == 0 {
		return ErrNoEligibleOrders
	}

	notified := make([]events.DomainEvent, 0, len(eligible))
	for _, ord := range eligible {
		if err = ord.MarkEligibilityNotified(now); err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, ord); err != nil {
			if errors.Is(err, errs.ErrVersionIsInvalid) {
				continue
			}
			return err
		}

		notified = append(notified, events.ReleaseEligible{OrderID: ord.ID()})
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if len(notified) > 0 {
		h.publisher.Publish(ctx, notified...)
	}
	return nil
}
