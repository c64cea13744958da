package services

import (
	"fmt"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/tariff"
	"settlement/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// CommissionCalculator is a domain service for the pricing math the engine
// performs at order creation: marking line prices up by the platform rate,
// deriving the commission per line, and computing the clamped delivery fee.
//
// All results are whole minor units; fractional results round half away from
// zero. Rates come from tariff settings captured at creation time and are
// never re-read at settlement.
type CommissionCalculator struct{}

// NewCommissionCalculator creates a new CommissionCalculator instance.
func NewCommissionCalculator() CommissionCalculator {
	return CommissionCalculator{}
}

// DisplayPrice marks a base price up by the platform commission rate.
//
// Parameters:
//   - base: the seller's unit price
//   - rate: the platform commission rate, in [0, 1]
//
// Returns:
//   - kernel.Money: round(base × (1 + rate)) in the base currency
//   - error: validation error if the base or rate is invalid
func (c CommissionCalculator) DisplayPrice(base kernel.Money, rate decimal.Decimal) (kernel.Money, error) {
	if err := base.Validate(); err != nil {
		return kernel.Money{}, err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return kernel.Money{}, errs.NewValueIsOutOfRangeError("rate", rate.String(), "0", "1")
	}

	display := decimal.NewFromInt(base.Amount()).
		Mul(decimal.NewFromInt(1).Add(rate)).
		Round(0)

	return kernel.NewMoney(display.IntPart(), base.Currency())
}

// Commission derives the platform's share of one unit as the spread between
// the display price and the base price.
//
// A display price below the base price means the stored pricing is corrupt;
// the spread is then floored at zero and reported through the flag so the
// order can carry the mark instead of a negative commission.
//
// Returns:
//   - kernel.Money: display − base, never negative
//   - bool: true when the spread was negative and got floored
//   - error: validation error on invalid inputs or currency mismatch
func (c CommissionCalculator) Commission(base kernel.Money, display kernel.Money) (kernel.Money, bool, error) {
	if err := base.Validate(); err != nil {
		return kernel.Money{}, false, err
	}
	if err := display.Validate(); err != nil {
		return kernel.Money{}, false, err
	}
	if base.Currency() != display.Currency() {
		return kernel.Money{}, false, errs.NewValueIsInvalidErrorWithCause(
			"currency is invalid",
			fmt.Errorf("display currency %s does not match base currency %s", display.Currency(), base.Currency()),
		)
	}

	if display.Amount() < base.Amount() {
		zero, err := kernel.NewMoney(0, base.Currency())
		return zero, true, err
	}

	commission, err := display.Sub(base)
	return commission, false, err
}

// AgentFee computes the delivery fee for an order total under an agent fee
// schedule: round(total × rate), clamped to the schedule's [minFee, maxFee]
// bounds. A zero ceiling means unbounded above.
//
// The order total for fee purposes is the display subtotal of the lines,
// fixed at creation together with the schedule values.
func (c CommissionCalculator) AgentFee(orderTotal kernel.Money, setting *tariff.Setting) (kernel.Money, error) {
	if err := orderTotal.Validate(); err != nil {
		return kernel.Money{}, err
	}
	if err := setting.Validate(); err != nil {
		return kernel.Money{}, err
	}

	fee := decimal.NewFromInt(orderTotal.Amount()).
		Mul(setting.Rate()).
		Round(0).
		IntPart()

	if fee < setting.MinFee() {
		fee = setting.MinFee()
	}
	if setting.MaxFee() > 0 && fee > setting.MaxFee() {
		fee = setting.MaxFee()
	}

	return kernel.NewMoney(fee, orderTotal.Currency())
}
