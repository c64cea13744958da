package order

import (
	"errors"
	"fmt"
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder. This ensures all orders are
	// properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrAlreadyClaimed is returned when an agent tries to claim an order
	// that already carries an assigned agent.
	ErrAlreadyClaimed = errors.New("order is already claimed")

	// ErrReleaseNotEligible is returned when a release action arrives while
	// the post-delivery grace period is still running, or before the order
	// was delivered at all.
	ErrReleaseNotEligible = errors.New("order is not eligible for release")
)

// Order represents a marketplace order in the system. It is the aggregate
// root that manages the order lifecycle from checkout through delivery to
// settlement of the escrowed funds.
//
// Order follows these invariants:
//   - Must have valid buyer, seller and order identifiers; buyer and seller
//     always differ
//   - Must have at least one line, and every line, price and charge shares
//     one currency
//   - displayTotal = baseTotal + commissionTotal + deliveryFee + tax -
//     discount, within one minor unit, unless a line is flagged as corrupt
//   - Status transitions follow the lifecycle edge table; buyer, seller and
//     agent actors must be the order's own parties
//   - Can only be created through NewOrder or RestoreOrder
//
// The Order struct uses private fields to ensure encapsulation and maintains
// its invariants through validated methods.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// buyerID is the purchasing party
	buyerID kernel.UUID

	// sellerID is the selling party
	sellerID kernel.UUID

	// agentID is the assigned delivery agent (nil until claimed)
	agentID *kernel.UUID

	// variant selects the settlement policy the order runs under
	variant Variant

	// status represents the current state in the order lifecycle
	status Status

	// version is the optimistic concurrency token, starting at 1
	version int64

	// currency is shared by every monetary field of the order
	currency kernel.Currency

	// baseTotal is the sum of the seller's line subtotals
	baseTotal kernel.Money

	// displayTotal is the buyer-facing total and the escrowed amount
	displayTotal kernel.Money

	// commissionTotal is the platform's cut over all lines
	commissionTotal kernel.Money

	// deliveryFee is the agent's compensation, clamped at checkout
	deliveryFee kernel.Money

	// tax and discount are order-level charges applied to the display total
	tax      kernel.Money
	discount kernel.Money

	// lines are the priced items of the order
	lines []*Line

	createdAt time.Time

	// lifecycle timestamps, stamped when the matching status is entered
	confirmedAt *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	completedAt *time.Time
	cancelledAt *time.Time

	// releaseEligibleAt is deliveredAt plus the grace period
	releaseEligibleAt *time.Time

	// eligibilityNotified latches the one-shot grace sweep notification
	eligibilityNotified bool

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// Totals carries the persisted monetary fields of an order. It groups the
// six money columns for rehydration from storage.
type Totals struct {
	Base        kernel.Money
	Display     kernel.Money
	Commission  kernel.Money
	DeliveryFee kernel.Money
	Tax         kernel.Money
	Discount    kernel.Money
}

// Timeline carries the persisted lifecycle timestamps of an order.
type Timeline struct {
	CreatedAt           time.Time
	ConfirmedAt         *time.Time
	PickedUpAt          *time.Time
	DeliveredAt         *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	ReleaseEligibleAt   *time.Time
	EligibilityNotified bool
}

// NewOrder creates a new Order at checkout. This is the only way to create
// a fresh order, ensuring all business invariants are maintained.
//
// Parameters:
//   - id: Unique identifier for the order (must be valid UUID)
//   - buyerID: The purchasing party (must differ from sellerID)
//   - sellerID: The selling party
//   - variant: The marketplace flow the order settles under
//   - lines: Priced items, at least one, all in one currency and all
//     referencing this order's id
//   - deliveryFee: Agent compensation computed at checkout
//   - tax: Order-level tax charge
//   - discount: Order-level discount, subtracted from the display total
//   - now: Creation instant
//
// Returns:
//   - *Order: The created order if all validations pass
//   - error: Validation error if any parameter is invalid
//
// The order starts in PendingPayment with version 1 and no agent. Totals
// are derived from the lines and charges.
func NewOrder(
	id kernel.UUID,
	buyerID kernel.UUID,
	sellerID kernel.UUID,
	variant Variant,
	lines []*Line,
	deliveryFee kernel.Money,
	tax kernel.Money,
	discount kernel.Money,
	now time.Time,
) (*Order, error) {
	order := &Order{
		status:        PendingPayment,
		version:       1,
		createdAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setBuyer(buyerID),
		order.setSeller(sellerID),
		order.setVariant(variant),
		order.setLines(lines),
		order.setCharges(deliveryFee, tax, discount),
	); err != nil {
		return nil, err
	}

	if err := order.computeTotals(); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an order from its persisted state.
//
// Unlike NewOrder, which derives totals from the lines, this constructor
// trusts the stored totals and validates them against the monetary identity
// with a tolerance of one minor unit. The restored order behaves identically
// to one created through normal domain operations.
//
// Parameters:
//   - id, buyerID, sellerID: Party identifiers
//   - agentID: Assigned agent, nil when the order was never claimed
//   - variant: The marketplace flow the order settles under
//   - status: Persisted lifecycle status, must be consistent with agentID
//   - version: Optimistic concurrency token, at least 1
//   - lines: Restored order lines
//   - totals: Persisted monetary fields
//   - timeline: Persisted lifecycle timestamps
//
// Returns:
//   - *Order: Restored order aggregate
//   - error: Validation error if any stored value is invalid
func RestoreOrder(
	id kernel.UUID,
	buyerID kernel.UUID,
	sellerID kernel.UUID,
	agentID *kernel.UUID,
	variant Variant,
	status Status,
	version int64,
	lines []*Line,
	totals Totals,
	timeline Timeline,
) (*Order, error) {
	order := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setBuyer(buyerID),
		order.setSeller(sellerID),
		order.setVariant(variant),
		order.setStatus(status),
		order.setVersion(version),
		order.setLines(lines),
		order.setTotals(totals),
		order.setAgent(agentID, status),
	); err != nil {
		return nil, err
	}

	order.createdAt = timeline.CreatedAt
	order.confirmedAt = timeline.ConfirmedAt
	order.pickedUpAt = timeline.PickedUpAt
	order.deliveredAt = timeline.DeliveredAt
	order.completedAt = timeline.CompletedAt
	order.cancelledAt = timeline.CancelledAt
	order.releaseEligibleAt = timeline.ReleaseEligibleAt
	order.eligibilityNotified = timeline.EligibilityNotified

	if err := order.validateTotals(); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed.
//
// Returns:
//   - nil if the order is valid
//   - ErrOrderIsNotConstructed if the order was not created via a constructor
//
// This method should be called when reconstructing orders from persistence
// to ensure data integrity.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
// Orders are considered equal if they have the same ID.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Buyer returns the purchasing party's identifier.
func (o *Order) Buyer() kernel.UUID {
	return o.buyerID
}

// Seller returns the selling party's identifier.
func (o *Order) Seller() kernel.UUID {
	return o.sellerID
}

// Agent returns the assigned agent's identifier.
// Returns nil if no agent has claimed the order.
func (o *Order) Agent() *kernel.UUID {
	return o.agentID
}

// Variant returns the marketplace flow the order settles under.
func (o *Order) Variant() Variant {
	return o.variant
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Version returns the optimistic concurrency token the order was loaded
// with. The repository increments it on every successful update.
func (o *Order) Version() int64 {
	return o.version
}

// Currency returns the currency shared by every monetary field.
func (o *Order) Currency() kernel.Currency {
	return o.currency
}

// BaseTotal returns the sum of the seller's line subtotals.
func (o *Order) BaseTotal() kernel.Money {
	return o.baseTotal
}

// DisplayTotal returns the buyer-facing total. This is the amount held in
// escrow when payment is confirmed.
func (o *Order) DisplayTotal() kernel.Money {
	return o.displayTotal
}

// CommissionTotal returns the platform's cut over all lines.
func (o *Order) CommissionTotal() kernel.Money {
	return o.commissionTotal
}

// DeliveryFee returns the agent's compensation computed at checkout.
func (o *Order) DeliveryFee() kernel.Money {
	return o.deliveryFee
}

// Tax returns the order-level tax charge.
func (o *Order) Tax() kernel.Money {
	return o.tax
}

// Discount returns the order-level discount.
func (o *Order) Discount() kernel.Money {
	return o.discount
}

// Lines returns the priced items of the order.
func (o *Order) Lines() []*Line {
	return o.lines
}

// CreatedAt returns the checkout instant.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// ConfirmedAt returns when payment was last confirmed, nil before that.
func (o *Order) ConfirmedAt() *time.Time {
	return o.confirmedAt
}

// PickedUpAt returns when the agent collected the goods, nil before that.
func (o *Order) PickedUpAt() *time.Time {
	return o.pickedUpAt
}

// DeliveredAt returns when the handover was recorded, nil before that.
func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

// CompletedAt returns when escrow was settled, nil before that.
func (o *Order) CompletedAt() *time.Time {
	return o.completedAt
}

// CancelledAt returns when the order was cancelled, nil otherwise.
func (o *Order) CancelledAt() *time.Time {
	return o.cancelledAt
}

// ReleaseEligibleAt returns the instant the post-delivery grace period ends,
// nil before delivery.
func (o *Order) ReleaseEligibleAt() *time.Time {
	return o.releaseEligibleAt
}

// EligibilityNotified reports whether the grace sweep already announced the
// order's release eligibility.
func (o *Order) EligibilityNotified() bool {
	return o.eligibilityNotified
}

// HasFlaggedLines reports whether any line carries corrupt pricing.
func (o *Order) HasFlaggedLines() bool {
	for _, line := range o.lines {
		if line.Flagged() {
			return true
		}
	}
	return false
}

// IsParty reports whether the actor is the buyer, the seller or the
// assigned agent of the order.
func (o *Order) IsParty(actor kernel.Actor) bool {
	if actor.ID().IsEqual(o.buyerID) || actor.ID().IsEqual(o.sellerID) {
		return true
	}
	return o.agentID != nil && actor.ID().IsEqual(*o.agentID)
}

// IsReleaseEligible reports whether the order is delivered and its grace
// period has elapsed at the given instant.
func (o *Order) IsReleaseEligible(now time.Time) bool {
	return o.status == Delivered && o.releaseEligibleAt != nil && !now.Before(*o.releaseEligibleAt)
}

// TransitionTo moves the order along one lifecycle edge.
//
// This method enforces the following business rules:
//   - The edge must exist in the lifecycle table and permit the actor's role
//   - Buyer, seller and agent actors must be the order's own parties; an
//     agent must be the assigned agent
//   - Entering Delivered stamps deliveredAt and the release eligibility
//     deadline; grace overrides the variant's default window when positive
//   - Resolving a dispute back to Confirmed returns the order to the claim
//     pool: the agent and any release eligibility are cleared
//
// Parameters:
//   - target: The status to move to
//   - actor: The acting party
//   - now: The transition instant, used for timestamps
//   - grace: Deployment override of the post-delivery grace period;
//     non-positive means the variant default
//
// Returns:
//   - Effect: The settlement work bound to the edge, for the caller to run
//     in the same transaction
//   - error: ErrIllegalTransition, ErrRoleNotAllowed or a validation error
//
// The claim edge (Confirmed to Assigned) is served by Claim; calling
// TransitionTo for it as an agent fails the assigned-agent check.
func (o *Order) TransitionTo(target Status, actor kernel.Actor, now time.Time, grace time.Duration) (Effect, error) {
	if err := o.Validate(); err != nil {
		return EffectNone, err
	}
	if err := actor.Validate(); err != nil {
		return EffectNone, err
	}

	effect, err := o.status.Transition(target, actor.Role())
	if err != nil {
		return EffectNone, err
	}

	if err := o.authorizeParty(actor); err != nil {
		return EffectNone, err
	}

	from := o.status
	o.status = target
	o.stampTransition(from, target, now, grace)

	return effect, nil
}

// Claim assigns the acting agent to the order and moves it to Assigned.
//
// This method enforces the following business rules:
//   - The actor must carry the agent role
//   - The order must not have an assigned agent yet
//   - The order must be in Confirmed status
//
// Returns:
//   - nil on successful claim
//   - ErrAlreadyClaimed if another agent holds the order
//   - ErrRoleNotAllowed or ErrIllegalTransition otherwise
//
// Claim enforces the aggregate-level half of the first-wins rule; the
// repository enforces the storage-level half with a conditional update.
func (o *Order) Claim(agent kernel.Actor) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := agent.Validate(); err != nil {
		return err
	}

	if !agent.Is(kernel.RoleAgent) {
		return fmt.Errorf("%w: only delivery agents claim orders, got role %s", ErrRoleNotAllowed, agent.Role())
	}
	if o.agentID != nil {
		return fmt.Errorf("%w: order %s is held by agent %s", ErrAlreadyClaimed, o.id, *o.agentID)
	}
	if _, err := o.status.Transition(Assigned, agent.Role()); err != nil {
		return err
	}

	agentID := agent.ID()
	o.agentID = &agentID
	o.status = Assigned
	return nil
}

// MarkEligibilityNotified latches the one-shot notification the grace sweep
// sends when an order becomes eligible for release.
//
// The order must be delivered with an elapsed grace period. Calling it again
// after the latch is set is a no-op, so the sweep may safely retry.
func (o *Order) MarkEligibilityNotified(now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if !o.IsReleaseEligible(now) {
		return fmt.Errorf("%w: order %s", ErrReleaseNotEligible, o.id)
	}

	o.eligibilityNotified = true
	return nil
}

// authorizeParty checks that buyer, seller and agent actors act on their own
// order. Admin and system actors pass unconditionally.
func (o *Order) authorizeParty(actor kernel.Actor) error {
	switch actor.Role() {
	case kernel.RoleBuyer:
		if !actor.ID().IsEqual(o.buyerID) {
			return fmt.Errorf("%w: %s is not the buyer of order %s", ErrRoleNotAllowed, actor.ID(), o.id)
		}
	case kernel.RoleSeller:
		if !actor.ID().IsEqual(o.sellerID) {
			return fmt.Errorf("%w: %s is not the seller of order %s", ErrRoleNotAllowed, actor.ID(), o.id)
		}
	case kernel.RoleAgent:
		if o.agentID == nil || !actor.ID().IsEqual(*o.agentID) {
			return fmt.Errorf("%w: %s is not the assigned agent of order %s", ErrRoleNotAllowed, actor.ID(), o.id)
		}
	case kernel.RoleUnknown, kernel.RoleAdmin, kernel.RoleSystem:
	}
	return nil
}

// stampTransition applies the timestamps and cleanups bound to entering the
// target status.
func (o *Order) stampTransition(from Status, target Status, now time.Time, grace time.Duration) {
	//nolint:exhaustive // statuses without entry bookkeeping need no case
	switch target {
	case Confirmed:
		o.confirmedAt = &now
		if from == Disputed {
			// back to the claim pool
			o.agentID = nil
			o.releaseEligibleAt = nil
			o.eligibilityNotified = false
		}
	case PickedUp:
		o.pickedUpAt = &now
	case Delivered:
		period := grace
		if period <= 0 {
			period = o.variant.Policy().GracePeriod()
		}
		eligibleAt := now.Add(period)
		o.deliveredAt = &now
		o.releaseEligibleAt = &eligibleAt
		o.eligibilityNotified = false
	case Completed:
		o.completedAt = &now
	case Cancelled:
		o.cancelledAt = &now
	}
}

// setID validates and sets the order's unique identifier.
// This is a private method used only during construction.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setBuyer validates and sets the purchasing party.
func (o *Order) setBuyer(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}
	o.buyerID = buyerID
	return nil
}

// setSeller validates and sets the selling party.
// The seller must differ from the buyer.
func (o *Order) setSeller(sellerID kernel.UUID) error {
	if err := sellerID.Validate(); err != nil {
		return err
	}
	if sellerID.IsEqual(o.buyerID) {
		return errs.NewValueIsInvalidErrorWithCause(
			"sellerID is invalid",
			fmt.Errorf("buyer and seller must differ, both are %s", sellerID),
		)
	}
	o.sellerID = sellerID
	return nil
}

// setVariant validates and sets the marketplace flow.
func (o *Order) setVariant(variant Variant) error {
	if err := variant.Validate(); err != nil {
		return err
	}
	o.variant = variant
	return nil
}

// setStatus validates and sets the persisted status.
// This is used only by RestoreOrder.
func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

// setVersion validates and sets the optimistic concurrency token.
func (o *Order) setVersion(version int64) error {
	if version < 1 {
		return errs.NewValueIsInvalidErrorWithCause(
			"version is invalid",
			fmt.Errorf("%d is not greater than 0", version),
		)
	}
	o.version = version
	return nil
}

// setAgent validates and sets the assigned agent, checking consistency with
// the persisted status. This is used only by RestoreOrder.
func (o *Order) setAgent(agentID *kernel.UUID, status Status) error {
	if agentID != nil {
		if err := agentID.Validate(); err != nil {
			return err
		}
	}
	if err := status.ValidateCanHaveAgent(agentID != nil); err != nil {
		return err
	}
	o.agentID = agentID
	return nil
}

// setLines validates and sets the priced items. The order must have at least
// one line, every line must reference this order, and all lines must share
// one currency, which becomes the order currency.
func (o *Order) setLines(lines []*Line) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}

	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
		if !line.OrderID().IsEqual(o.id) {
			return errs.NewValueIsInvalidErrorWithCause(
				"lines are invalid",
				fmt.Errorf("line %s belongs to order %s, not %s", line.ID(), line.OrderID(), o.id),
			)
		}
	}

	currency := lines[0].UnitBasePrice().Currency()
	for _, line := range lines {
		if line.UnitBasePrice().Currency() != currency {
			return errs.NewValueIsInvalidErrorWithCause(
				"lines are invalid",
				fmt.Errorf("line %s is priced in %s, order currency is %s", line.ID(), line.UnitBasePrice().Currency(), currency),
			)
		}
	}

	o.lines = lines
	o.currency = currency
	return nil
}

// setCharges validates and sets the order-level charges. Every charge must
// match the order currency established by the lines.
func (o *Order) setCharges(deliveryFee kernel.Money, tax kernel.Money, discount kernel.Money) error {
	for name, charge := range map[string]kernel.Money{
		"deliveryFee": deliveryFee,
		"tax":         tax,
		"discount":    discount,
	} {
		if err := charge.Validate(); err != nil {
			return err
		}
		if charge.Currency() != o.currency {
			return errs.NewValueIsInvalidErrorWithCause(
				name+" is invalid",
				fmt.Errorf("%s is in %s, order currency is %s", name, charge.Currency(), o.currency),
			)
		}
	}

	o.deliveryFee = deliveryFee
	o.tax = tax
	o.discount = discount
	return nil
}

// setTotals validates and sets the persisted monetary fields.
// This is used only by RestoreOrder.
func (o *Order) setTotals(totals Totals) error {
	if err := errors.Join(
		totals.Base.Validate(),
		totals.Display.Validate(),
		totals.Commission.Validate(),
		totals.DeliveryFee.Validate(),
		totals.Tax.Validate(),
		totals.Discount.Validate(),
	); err != nil {
		return err
	}

	for name, total := range map[string]kernel.Money{
		"baseTotal":       totals.Base,
		"displayTotal":    totals.Display,
		"commissionTotal": totals.Commission,
		"deliveryFee":     totals.DeliveryFee,
		"tax":             totals.Tax,
		"discount":        totals.Discount,
	} {
		if total.Currency() != o.currency {
			return errs.NewValueIsInvalidErrorWithCause(
				name+" is invalid",
				fmt.Errorf("%s is in %s, order currency is %s", name, total.Currency(), o.currency),
			)
		}
	}

	o.baseTotal = totals.Base
	o.displayTotal = totals.Display
	o.commissionTotal = totals.Commission
	o.deliveryFee = totals.DeliveryFee
	o.tax = totals.Tax
	o.discount = totals.Discount
	return nil
}

// computeTotals derives the monetary fields from the lines and charges.
// This is used only by NewOrder.
func (o *Order) computeTotals() error {
	baseTotal, err := kernel.NewMoney(0, o.currency)
	if err != nil {
		return err
	}
	displayTotal := baseTotal
	commissionTotal := baseTotal

	for _, line := range o.lines {
		baseSubtotal, err := line.BaseSubtotal()
		if err != nil {
			return err
		}
		if baseTotal, err = baseTotal.Add(baseSubtotal); err != nil {
			return err
		}

		displaySubtotal, err := line.DisplaySubtotal()
		if err != nil {
			return err
		}
		if displayTotal, err = displayTotal.Add(displaySubtotal); err != nil {
			return err
		}

		if commissionTotal, err = commissionTotal.Add(line.Commission()); err != nil {
			return err
		}
	}

	if displayTotal, err = displayTotal.Add(o.deliveryFee); err != nil {
		return err
	}
	if displayTotal, err = displayTotal.Add(o.tax); err != nil {
		return err
	}
	if displayTotal, err = displayTotal.Sub(o.discount); err != nil {
		return err
	}

	o.baseTotal = baseTotal
	o.displayTotal = displayTotal
	o.commissionTotal = commissionTotal

	return o.validateTotals()
}

// validateTotals checks the monetary identity of the order: the display
// total equals base plus commission plus charges within one minor unit.
// Orders with flagged lines are exempt; the flag already marks them for
// reconciliation.
func (o *Order) validateTotals() error {
	if o.HasFlaggedLines() {
		return nil
	}

	expected := o.baseTotal.Amount() + o.commissionTotal.Amount() +
		o.deliveryFee.Amount() + o.tax.Amount() - o.discount.Amount()
	diff := o.displayTotal.Amount() - expected
	if diff < -1 || diff > 1 {
		return errs.NewValueIsInvalidErrorWithCause(
			"displayTotal is invalid",
			fmt.Errorf("display total %d differs from expected %d by more than one minor unit", o.displayTotal.Amount(), expected),
		)
	}
	return nil
}
