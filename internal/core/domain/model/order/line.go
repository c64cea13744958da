package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/errs"
	"settlement/internal/pkg/guard"
)

// ErrLineIsNotConstructed is returned when a Line instance was not created
// through NewLine or RestoreLine.
var ErrLineIsNotConstructed = errors.New("order line must be created via NewLine or RestoreLine")

// Line is one priced item of an order. It captures both the seller's base
// price and the buyer-facing display price at checkout time, together with
// the commission rate used, so later rate changes never affect the order.
//
// Line invariants:
//   - quantity is positive
//   - base and display prices share one currency
//   - rate stays within [0, 1]
//   - lineCommission = (unitDisplay - unitBase) * quantity, never negative;
//     a display price below base marks the line flagged and zeroes the
//     commission instead of going negative
type Line struct {
	// id is the unique identifier of the line
	id kernel.UUID

	// orderID is the owning order
	orderID kernel.UUID

	// itemID references the catalog item the line prices
	itemID kernel.UUID

	// quantity is the number of units ordered (positive)
	quantity int

	// unitBasePrice is the seller's price per unit
	unitBasePrice kernel.Money

	// unitDisplayPrice is the buyer-facing price per unit, base plus
	// platform commission
	unitDisplayPrice kernel.Money

	// rate is the platform commission rate captured at checkout
	rate decimal.Decimal

	// lineCommission is the platform's cut over the whole line
	lineCommission kernel.Money

	// flagged marks corrupt pricing (display below base) for reconciliation
	flagged bool

	// guard ensures the line was properly constructed
	guard guard.ConstructorGuard
}

// NewLine creates an order line from the prices computed at checkout and
// derives the line commission.
//
// Parameters:
//   - id: unique identifier for the line
//   - orderID: the owning order
//   - itemID: the catalog item being priced
//   - quantity: number of units, must be positive
//   - unitBasePrice: seller's per-unit price
//   - unitDisplayPrice: buyer-facing per-unit price, same currency as base
//   - rate: the commission rate the display price was computed with
//
// Returns:
//   - *Line: the constructed line with commission derived
//   - error: validation error if any parameter is invalid
//
// A display price below the base price does not fail construction: the line
// is flagged and its commission floored at zero so settlement never produces
// a negative platform cut.
func NewLine(
	id kernel.UUID,
	orderID kernel.UUID,
	itemID kernel.UUID,
	quantity int,
	unitBasePrice kernel.Money,
	unitDisplayPrice kernel.Money,
	rate decimal.Decimal,
) (*Line, error) {
	line := &Line{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		line.setID(id),
		line.setOrderID(orderID),
		line.setItemID(itemID),
		line.setQuantity(quantity),
		line.setUnitPrices(unitBasePrice, unitDisplayPrice),
		line.setRate(rate),
	); err != nil {
		return nil, err
	}

	if err := line.deriveCommission(); err != nil {
		return nil, err
	}

	return line, nil
}

// RestoreLine reconstructs a line from persistence without re-deriving the
// commission, preserving exactly what was stored at checkout time.
//
// Returns:
//   - *Line: the restored line
//   - error: validation error if any stored value is invalid
func RestoreLine(
	id kernel.UUID,
	orderID kernel.UUID,
	itemID kernel.UUID,
	quantity int,
	unitBasePrice kernel.Money,
	unitDisplayPrice kernel.Money,
	rate decimal.Decimal,
	lineCommission kernel.Money,
	flagged bool,
) (*Line, error) {
	line := &Line{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		line.setID(id),
		line.setOrderID(orderID),
		line.setItemID(itemID),
		line.setQuantity(quantity),
		line.setUnitPrices(unitBasePrice, unitDisplayPrice),
		line.setRate(rate),
		lineCommission.Validate(),
	); err != nil {
		return nil, err
	}

	line.lineCommission = lineCommission
	line.flagged = flagged
	return line, nil
}

// Validate ensures the Line instance was properly constructed.
func (l *Line) Validate() error {
	if l == nil {
		return ErrLineIsNotConstructed
	}
	return l.guard.Validate(ErrLineIsNotConstructed)
}

// ID returns the line's unique identifier.
func (l *Line) ID() kernel.UUID {
	return l.id
}

// OrderID returns the owning order's identifier.
func (l *Line) OrderID() kernel.UUID {
	return l.orderID
}

// ItemID returns the catalog item the line prices.
func (l *Line) ItemID() kernel.UUID {
	return l.itemID
}

// Quantity returns the number of units ordered.
func (l *Line) Quantity() int {
	return l.quantity
}

// UnitBasePrice returns the seller's per-unit price.
func (l *Line) UnitBasePrice() kernel.Money {
	return l.unitBasePrice
}

// UnitDisplayPrice returns the buyer-facing per-unit price.
func (l *Line) UnitDisplayPrice() kernel.Money {
	return l.unitDisplayPrice
}

// Rate returns the commission rate captured at checkout.
func (l *Line) Rate() decimal.Decimal {
	return l.rate
}

// Commission returns the platform's cut over the whole line.
func (l *Line) Commission() kernel.Money {
	return l.lineCommission
}

// Flagged reports whether the line carries corrupt pricing.
func (l *Line) Flagged() bool {
	return l.flagged
}

// BaseSubtotal returns the seller's price over the whole line.
func (l *Line) BaseSubtotal() (kernel.Money, error) {
	return l.unitBasePrice.MulQuantity(l.quantity)
}

// DisplaySubtotal returns the buyer-facing price over the whole line.
func (l *Line) DisplaySubtotal() (kernel.Money, error) {
	return l.unitDisplayPrice.MulQuantity(l.quantity)
}

// setID validates and sets the line's unique identifier.
func (l *Line) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	l.id = id
	return nil
}

// setOrderID validates and sets the owning order.
func (l *Line) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	l.orderID = orderID
	return nil
}

// setItemID validates and sets the catalog item reference.
func (l *Line) setItemID(itemID kernel.UUID) error {
	if err := itemID.Validate(); err != nil {
		return err
	}
	l.itemID = itemID
	return nil
}

// setQuantity validates and sets the unit count. Quantity must be positive.
func (l *Line) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"quantity is invalid",
			fmt.Errorf("%d is not greater than 0", quantity),
		)
	}
	l.quantity = quantity
	return nil
}

// setUnitPrices validates and sets both per-unit prices.
// The prices must share one currency.
func (l *Line) setUnitPrices(base kernel.Money, display kernel.Money) error {
	if err := base.Validate(); err != nil {
		return err
	}
	if err := display.Validate(); err != nil {
		return err
	}
	if base.Currency() != display.Currency() {
		return errs.NewValueIsInvalidErrorWithCause(
			"unit prices are invalid",
			fmt.Errorf("base currency %s differs from display currency %s", base.Currency(), display.Currency()),
		)
	}
	l.unitBasePrice = base
	l.unitDisplayPrice = display
	return nil
}

// setRate validates and sets the captured commission rate.
// The rate must stay within [0, 1].
func (l *Line) setRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return errs.NewValueIsOutOfRangeError("rate", rate.String(), "0", "1")
	}
	l.rate = rate
	return nil
}

// deriveCommission computes the line commission from the captured prices,
// flooring it at zero and flagging the line when the display price is below
// the base price.
func (l *Line) deriveCommission() error {
	perUnit := l.unitDisplayPrice.Amount() - l.unitBasePrice.Amount()
	if perUnit < 0 {
		perUnit = 0
		l.flagged = true
	}

	commission, err := kernel.NewMoney(perUnit*int64(l.quantity), l.unitBasePrice.Currency())
	if err != nil {
		return err
	}

	l.lineCommission = commission
	return nil
}
