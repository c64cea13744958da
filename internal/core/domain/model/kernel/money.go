package kernel

import (
	"fmt"
	"unicode"

	"settlement/internal/pkg/errs"
	"settlement/internal/pkg/guard"
)

// ErrMoneyIsNotConstructed indicates that a Money value was not created
// through NewMoney and therefore carries no validated currency.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney")

// Currency is a three-letter uppercase currency code (e.g. "USD", "KES").
type Currency string

// NewCurrency validates and normalizes a currency code.
func NewCurrency(code string) (Currency, error) {
	if code == "" {
		return "", errs.NewValueIsRequiredError("currency")
	}
	if len(code) != 3 {
		return "", errs.NewValueIsInvalidErrorWithCause(
			"currency is invalid",
			fmt.Errorf("%q is not a three-letter code", code),
		)
	}

	normalized := make([]rune, 0, 3)
	for _, r := range code {
		if !unicode.IsLetter(r) {
			return "", errs.NewValueIsInvalidErrorWithCause(
				"currency is invalid",
				fmt.Errorf("%q contains a non-letter character", code),
			)
		}
		normalized = append(normalized, unicode.ToUpper(r))
	}

	return Currency(normalized), nil
}

// Validate checks the currency against the same rules NewCurrency applies.
func (c Currency) Validate() error {
	_, err := NewCurrency(string(c))
	return err
}

// String returns the code itself.
func (c Currency) String() string {
	return string(c)
}

// Money is an immutable value object holding a non-negative amount of money
// in minor units (cents) together with its currency. All monetary fields in
// the settlement engine are Money values; arithmetic across currencies is
// rejected rather than coerced.
//
// Example:
//
//	price, err := kernel.NewMoney(1210, "USD")
//	if err != nil {
//	    return err
//	}
//	total, err := price.MulQuantity(3)
type Money struct {
	amount   int64
	currency Currency

	guard guard.ConstructorGuard
}

// NewMoney creates a Money value. The amount is in minor units and must not
// be negative; the currency must be a valid three-letter code.
func NewMoney(amount int64, currency Currency) (Money, error) {
	if amount < 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"amount is invalid",
			fmt.Errorf("%d is negative", amount),
		)
	}
	if err := currency.Validate(); err != nil {
		return Money{}, err
	}

	return Money{
		amount:   amount,
		currency: currency,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the value was created through NewMoney.
func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsEqual reports whether two Money values have the same amount and currency.
func (m Money) IsEqual(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

// Add returns the sum of two same-currency Money values.
func (m Money) Add(other Money) (Money, error) {
	if err := m.assertSameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount+other.amount, m.currency)
}

// Sub returns the difference of two same-currency Money values. A negative
// result is rejected; settlement math that can legitimately go negative must
// work on Amount() directly and decide what a negative remainder means.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.assertSameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.amount > m.amount {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"amount is invalid",
			fmt.Errorf("subtracting %d from %d is negative", other.amount, m.amount),
		)
	}
	return NewMoney(m.amount-other.amount, m.currency)
}

// MulQuantity returns the value multiplied by a positive quantity.
func (m Money) MulQuantity(quantity int) (Money, error) {
	if quantity <= 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"quantity is invalid",
			fmt.Errorf("%d is not greater than 0", quantity),
		)
	}
	return NewMoney(m.amount*int64(quantity), m.currency)
}

// String renders the amount and currency for logs and error messages.
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amount, m.currency)
}

func (m Money) assertSameCurrency(other Money) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := other.Validate(); err != nil {
		return err
	}
	if m.currency != other.currency {
		return errs.NewValueIsInvalidErrorWithCause(
			"currency is invalid",
			fmt.Errorf("%s does not match %s", other.currency, m.currency),
		)
	}
	return nil
}
