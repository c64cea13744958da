package payout

import (
	"errors"
	"fmt"
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/errs"
	"settlement/internal/pkg/guard"
)

var (
	// ErrReleaseRequestIsNotConstructed is returned when a ReleaseRequest
	// instance was not created through NewReleaseRequest or
	// RestoreReleaseRequest.
	ErrReleaseRequestIsNotConstructed = errors.New("release request must be created via NewReleaseRequest or RestoreReleaseRequest")

	// ErrRequestNotPending is returned when a decision hits a request that
	// was already decided. Each request is decided exactly once.
	ErrRequestNotPending = errors.New("release request is not pending")
)

// ReleaseRequest asks for the escrowed funds of a delivered order to be paid
// out. Buyers, sellers and assigned agents may file one; an admin decides it.
// At most one pending request exists per order, which the repository
// enforces alongside the aggregate.
//
// A rejected request keeps the escrow untouched and leaves room for a new
// request; an approved request is what triggers the release settlement.
type ReleaseRequest struct {
	// id is the unique identifier of the request
	id kernel.UUID

	// orderID is the order whose escrow should be paid out
	orderID kernel.UUID

	// requestedBy is the party who filed the request, with their role
	requestedBy kernel.Actor

	// reason is the requester's motivation
	reason string

	// status tracks the decision lifecycle
	status Status

	// decidedBy is the account that decided the request, nil while pending
	decidedBy *kernel.UUID

	// decisionNotes explains the decision; required for rejections
	decisionNotes string

	createdAt time.Time
	decidedAt *time.Time

	// guard ensures the request was properly constructed
	guard guard.ConstructorGuard
}

// NewReleaseRequest files a pending request for an order's escrow.
//
// Parameters:
//   - id: unique identifier for the request
//   - orderID: the order whose escrow should be paid out
//   - requestedBy: the filing party; must be one of the order's parties,
//     which the command layer checks against the order
//   - reason: the requester's motivation, required
//   - now: filing instant
//
// Returns:
//   - *ReleaseRequest: a pending request
//   - error: validation error if any parameter is invalid
func NewReleaseRequest(
	id kernel.UUID,
	orderID kernel.UUID,
	requestedBy kernel.Actor,
	reason string,
	now time.Time,
) (*ReleaseRequest, error) {
	request := &ReleaseRequest{
		status:    StatusPending,
		createdAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		request.setID(id),
		request.setOrderID(orderID),
		request.setRequestedBy(requestedBy),
		request.setReason(reason),
	); err != nil {
		return nil, err
	}

	return request, nil
}

// RestoreReleaseRequest reconstructs a request from its persisted state.
func RestoreReleaseRequest(
	id kernel.UUID,
	orderID kernel.UUID,
	requestedBy kernel.Actor,
	reason string,
	status Status,
	decidedBy *kernel.UUID,
	decisionNotes string,
	createdAt time.Time,
	decidedAt *time.Time,
) (*ReleaseRequest, error) {
	request := &ReleaseRequest{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		request.setID(id),
		request.setOrderID(orderID),
		request.setRequestedBy(requestedBy),
		request.setReason(reason),
		request.setStatus(status),
	); err != nil {
		return nil, err
	}

	if decidedBy != nil {
		if err := decidedBy.Validate(); err != nil {
			return nil, err
		}
	}

	request.decidedBy = decidedBy
	request.decisionNotes = decisionNotes
	request.createdAt = createdAt
	request.decidedAt = decidedAt
	return request, nil
}

// Validate ensures the ReleaseRequest instance was properly constructed.
func (r *ReleaseRequest) Validate() error {
	if r == nil {
		return ErrReleaseRequestIsNotConstructed
	}
	return r.guard.Validate(ErrReleaseRequestIsNotConstructed)
}

// ID returns the request's unique identifier.
func (r *ReleaseRequest) ID() kernel.UUID {
	return r.id
}

// OrderID returns the order whose escrow should be paid out.
func (r *ReleaseRequest) OrderID() kernel.UUID {
	return r.orderID
}

// RequestedBy returns the filing party.
func (r *ReleaseRequest) RequestedBy() kernel.Actor {
	return r.requestedBy
}

// Reason returns the requester's motivation.
func (r *ReleaseRequest) Reason() string {
	return r.reason
}

// Status returns the decision state.
func (r *ReleaseRequest) Status() Status {
	return r.status
}

// DecidedBy returns the deciding account, nil while pending.
func (r *ReleaseRequest) DecidedBy() *kernel.UUID {
	return r.decidedBy
}

// DecisionNotes returns the explanation recorded with the decision.
func (r *ReleaseRequest) DecisionNotes() string {
	return r.decisionNotes
}

// CreatedAt returns the filing instant.
func (r *ReleaseRequest) CreatedAt() time.Time {
	return r.createdAt
}

// DecidedAt returns the decision instant, nil while pending.
func (r *ReleaseRequest) DecidedAt() *time.Time {
	return r.decidedAt
}

// IsPending reports whether the request still awaits a decision.
func (r *ReleaseRequest) IsPending() bool {
	return r.status == StatusPending
}

// Approve grants the request. The caller is responsible for executing the
// release settlement in the same transaction.
//
// Returns:
//   - nil on success
//   - ErrRequestNotPending if the request was already decided
func (r *ReleaseRequest) Approve(decidedBy kernel.Actor, notes string, now time.Time) error {
	return r.decide(StatusApproved, decidedBy, notes, now)
}

// Reject declines the request and keeps the escrow untouched. Notes are
// required so the requester learns why.
//
// Returns:
//   - nil on success
//   - ErrRequestNotPending if the request was already decided
//   - validation error when the notes are empty
func (r *ReleaseRequest) Reject(decidedBy kernel.Actor, notes string, now time.Time) error {
	if notes == "" {
		return errs.NewValueIsRequiredError("decisionNotes")
	}
	return r.decide(StatusRejected, decidedBy, notes, now)
}

// decide applies a decision to a pending request.
func (r *ReleaseRequest) decide(target Status, decidedBy kernel.Actor, notes string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := decidedBy.Validate(); err != nil {
		return err
	}
	if r.status != StatusPending {
		return fmt.Errorf("%w: request %s is %s", ErrRequestNotPending, r.id, r.status)
	}

	deciderID := decidedBy.ID()
	r.status = target
	r.decidedBy = &deciderID
	r.decisionNotes = notes
	r.decidedAt = &now
	return nil
}

// setID validates and sets the request's unique identifier.
func (r *ReleaseRequest) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

// setOrderID validates and sets the order reference.
func (r *ReleaseRequest) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	r.orderID = orderID
	return nil
}

// setRequestedBy validates and sets the filing party.
func (r *ReleaseRequest) setRequestedBy(requestedBy kernel.Actor) error {
	if err := requestedBy.Validate(); err != nil {
		return err
	}
	r.requestedBy = requestedBy
	return nil
}

// setReason validates and sets the requester's motivation.
func (r *ReleaseRequest) setReason(reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	r.reason = reason
	return nil
}

// setStatus validates and sets the persisted status.
func (r *ReleaseRequest) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	r.status = status
	return nil
}
