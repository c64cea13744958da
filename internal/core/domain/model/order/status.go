package order

import (
	"errors"
	"fmt"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/errs"
)

var (
	// ErrIllegalTransition is returned when the requested status change has
	// no edge in the lifecycle table. Orders never regress along the graph
	// except through the explicit admin dispute-resolution edges.
	ErrIllegalTransition = errors.New("order status transition is not allowed")

	// ErrRoleNotAllowed is returned when the requested edge exists but the
	// acting role is not permitted to drive it.
	ErrRoleNotAllowed = errors.New("actor is not allowed to perform this transition")
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct settlement workflow.
//
// Main path:
//
//	pending_payment ──> confirmed ──> assigned ──> picked_up ──> in_delivery ──> delivered ──> completed
//
// Side branches:
//   - payment_rejected: from pending_payment (admin verdict, final)
//   - cancelled: from any status before delivered (final)
//   - disputed: from pending_payment or delivered; only an admin resolves
//     it, back to confirmed or to cancelled
//
// Status is a value object that validates state transitions, carries the
// role permissions and settlement effect of each edge, and provides the
// snake_case string representation used for persistence and over the wire.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// PendingPayment is the initial status when an order is first created.
	// No funds are held yet and the order is invisible to delivery agents.
	PendingPayment

	// Confirmed indicates payment is secured and escrow is held for the
	// full display total. Orders in this status form the claimable pool.
	Confirmed

	// Assigned indicates exactly one delivery agent has claimed the order.
	Assigned

	// PickedUp indicates the agent collected the goods from the seller.
	PickedUp

	// InDelivery indicates the goods are on the way to the buyer.
	InDelivery

	// Delivered indicates the agent recorded the handover. The grace
	// period starts here; funds stay in escrow until an explicit release.
	Delivered

	// Completed indicates escrow was settled to seller, agent and platform.
	// This is a final state with no further transitions allowed.
	Completed

	// Cancelled indicates the order was abandoned. Held escrow, if any,
	// was refunded to the buyer. This is a final state.
	Cancelled

	// Disputed indicates a party contested payment or delivery. Funds stay
	// frozen in escrow until an admin resolves the dispute.
	Disputed

	// PaymentRejected indicates an admin rejected the payment evidence of a
	// pending order. This is a final state.
	PaymentRejected
)

// Effect identifies the settlement work bound to a lifecycle edge. The
// command layer resolves each effect inside the same transaction as the
// status change itself.
type Effect int

const (
	// EffectNone marks edges that change status only.
	EffectNone Effect = iota

	// EffectHoldEscrow moves the order's display total into escrow using
	// the variant funding path. Bound to payment confirmation.
	EffectHoldEscrow

	// EffectClaimAgent assigns the acting agent to the order. Bound to the
	// confirmed to assigned edge and served by the claim operation.
	EffectClaimAgent

	// EffectReleaseEscrow settles the held amount to seller, agent and
	// platform. Bound to receipt confirmation.
	EffectReleaseEscrow

	// EffectRefundEscrow returns the held amount to the buyer, when an
	// escrow is actually held. Bound to cancellation edges.
	EffectRefundEscrow

	// EffectScheduleGraceCheck stamps the release eligibility deadline.
	// Bound to the delivery edge.
	EffectScheduleGraceCheck
)

// getEffectStrings returns a map of Effect values to their log names.
func getEffectStrings() map[Effect]string {
	return map[Effect]string{
		EffectNone:               "none",
		EffectHoldEscrow:         "hold_escrow",
		EffectClaimAgent:         "claim_agent",
		EffectReleaseEscrow:      "release_escrow",
		EffectRefundEscrow:       "refund_escrow",
		EffectScheduleGraceCheck: "schedule_grace_check",
	}
}

// String returns the log name of the effect.
func (e Effect) String() string {
	if str, ok := getEffectStrings()[e]; ok {
		return str
	}
	return "none"
}

// getStatusStrings returns a map of Status values to their snake_case string
// representations. All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "unknown",
		PendingPayment:  "pending_payment",
		Confirmed:       "confirmed",
		Assigned:        "assigned",
		PickedUp:        "picked_up",
		InDelivery:      "in_delivery",
		Delivered:       "delivered",
		Completed:       "completed",
		Cancelled:       "cancelled",
		Disputed:        "disputed",
		PaymentRejected: "payment_rejected",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation and parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		PendingPayment:  "pending_payment",
		Confirmed:       "confirmed",
		Assigned:        "assigned",
		PickedUp:        "picked_up",
		InDelivery:      "in_delivery",
		Delivered:       "delivered",
		Completed:       "completed",
		Cancelled:       "cancelled",
		Disputed:        "disputed",
		PaymentRejected: "payment_rejected",
	}
}

// transitionKey identifies one directed edge of the lifecycle graph.
type transitionKey struct {
	from Status
	to   Status
}

// transitionRule carries the permissions and settlement effect of one edge.
type transitionRule struct {
	roles  []kernel.Role
	effect Effect
}

// allows reports whether the given role may drive the edge.
func (r transitionRule) allows(role kernel.Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// getTransitionRules returns the closed edge table of the order lifecycle.
// Every status change in the system resolves against this table; there is no
// other way to move an order between statuses. Edges listing the agent role
// additionally require the actor to be the order's assigned agent, which the
// aggregate enforces.
func getTransitionRules() map[transitionKey]transitionRule {
	buyerOrAdmin := []kernel.Role{kernel.RoleBuyer, kernel.RoleAdmin}
	agentOrAdmin := []kernel.Role{kernel.RoleAgent, kernel.RoleAdmin}
	anyPartyOrAdmin := []kernel.Role{kernel.RoleBuyer, kernel.RoleSeller, kernel.RoleAdmin}
	adminOnly := []kernel.Role{kernel.RoleAdmin}

	return map[transitionKey]transitionRule{
		{PendingPayment, Confirmed}:       {roles: buyerOrAdmin, effect: EffectHoldEscrow},
		{PendingPayment, PaymentRejected}: {roles: adminOnly, effect: EffectNone},
		{PendingPayment, Cancelled}:       {roles: anyPartyOrAdmin, effect: EffectNone},
		{PendingPayment, Disputed}:        {roles: buyerOrAdmin, effect: EffectNone},
		{Confirmed, Assigned}:             {roles: agentOrAdmin, effect: EffectClaimAgent},
		{Confirmed, Cancelled}:            {roles: anyPartyOrAdmin, effect: EffectRefundEscrow},
		{Assigned, PickedUp}:              {roles: agentOrAdmin, effect: EffectNone},
		{Assigned, Cancelled}:             {roles: anyPartyOrAdmin, effect: EffectRefundEscrow},
		{PickedUp, InDelivery}:            {roles: agentOrAdmin, effect: EffectNone},
		{PickedUp, Cancelled}:             {roles: anyPartyOrAdmin, effect: EffectRefundEscrow},
		{InDelivery, Delivered}:           {roles: agentOrAdmin, effect: EffectScheduleGraceCheck},
		{InDelivery, Cancelled}:           {roles: anyPartyOrAdmin, effect: EffectRefundEscrow},
		{Delivered, Completed}:            {roles: buyerOrAdmin, effect: EffectReleaseEscrow},
		{Delivered, Disputed}:             {roles: buyerOrAdmin, effect: EffectNone},
		{Disputed, Confirmed}:             {roles: adminOnly, effect: EffectNone},
		{Disputed, Cancelled}:             {roles: adminOnly, effect: EffectRefundEscrow},
	}
}

// Validate checks if the Status value is valid.
//
// Valid statuses are the ten lifecycle states; Unknown (0) and any other
// values are invalid.
//
// Returns:
//   - nil if the status is valid
//   - error with details if the status is invalid
//
// This method is used to ensure Status values from external sources
// (e.g., database, API) are valid before use.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name of the status.
//
// This method implements the fmt.Stringer interface and is safe to call on
// any Status value, including invalid ones, which render as "unknown".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// StatusFromString parses the snake_case representation used in persistence
// and API payloads back into a Status.
//
// Returns:
//   - the matching Status if the value names a valid lifecycle state
//   - (Unknown, error) otherwise
func StatusFromString(value string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == value {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%q is not a valid status", value),
	)
}

// IsTerminal reports whether no lifecycle edge leads out of the status.
//
// Terminal statuses are completed, cancelled and payment_rejected. A
// disputed order is not terminal because an admin may still resolve it.
func (s Status) IsTerminal() bool {
	if s.Validate() != nil {
		return false
	}
	for key := range getTransitionRules() {
		if key.from == s {
			return false
		}
	}
	return true
}

// Transition validates the edge from s to target for the given role and
// returns the settlement effect bound to that edge.
//
// Parameters:
//   - target: the status to move to
//   - role: the role of the acting party
//
// Returns:
//   - the edge's Effect and nil when the move is allowed
//   - (EffectNone, ErrIllegalTransition) when no such edge exists
//   - (EffectNone, ErrRoleNotAllowed) when the edge exists but the role may
//     not drive it
//
// Transition performs no side effects; Order.TransitionTo applies the
// resulting state change and timestamps.
func (s Status) Transition(target Status, role kernel.Role) (Effect, error) {
	if err := s.Validate(); err != nil {
		return EffectNone, err
	}
	if err := target.Validate(); err != nil {
		return EffectNone, err
	}

	rule, ok := getTransitionRules()[transitionKey{from: s, to: target}]
	if !ok {
		return EffectNone, fmt.Errorf("%w: %s to %s", ErrIllegalTransition, s, target)
	}
	if !rule.allows(role) {
		return EffectNone, fmt.Errorf("%w: %s may not move an order from %s to %s", ErrRoleNotAllowed, role, s, target)
	}

	return rule.effect, nil
}

// CanTransitionTo reports whether any role could move an order from s to
// target. It is a permission-free view of the edge table used by read models.
func (s Status) CanTransitionTo(target Status) bool {
	_, ok := getTransitionRules()[transitionKey{from: s, to: target}]
	return ok
}

// ValidateCanHaveAgent validates the consistency between order status and
// agent assignment.
//
// Business Rules:
//   - Orders before the claim (pending_payment, confirmed) and rejected
//     payments must not have an agent assigned
//   - Orders from assigned through completed must have an agent assigned
//   - Cancelled and disputed orders keep whatever assignment they had
//
// Parameters:
//   - agent: whether the order has an agent assigned
//
// Returns:
//   - error: validation error if status and agent assignment are inconsistent
func (s Status) ValidateCanHaveAgent(agent bool) error {
	//nolint:exhaustive // cancelled, disputed and invalid statuses allow both
	switch s {
	case PendingPayment, Confirmed, PaymentRejected:
		if agent {
			return errs.NewValueIsInvalidErrorWithCause(
				"status is invalid",
				fmt.Errorf("%s is not a valid status to have an agent", s),
			)
		}
	case Assigned, PickedUp, InDelivery, Delivered, Completed:
		if !agent {
			return errs.NewValueIsInvalidErrorWithCause(
				"status is invalid",
				fmt.Errorf("%s is not a valid status to have no agent", s),
			)
		}
	}

	return nil
}
