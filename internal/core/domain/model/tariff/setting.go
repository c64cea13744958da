// Package tariff holds the commission settings the pricing engine captures at
// order creation time: the platform markup rate and the per-agent-type
// delivery fee schedules with their floor/ceiling clamps.
package tariff

import (
	"errors"
	"fmt"

	"settlement/internal/pkg/errs"
	"settlement/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// Setting keys known to the engine. Rates are mutable by admin only and are
// captured per order at creation; later changes never reprice existing orders.
const (
	KeyPlatformCommission  = "platform_commission"
	KeyFastDeliveryAgent   = "fast_delivery_agent"
	KeyPickupDeliveryAgent = "pickup_delivery_agent"
)

// ErrSettingIsNotConstructed is returned when a Setting was not created via
// NewSetting or RestoreSetting.
var ErrSettingIsNotConstructed = errors.New("Setting must be created via NewSetting constructor")

// Setting is a commission rate keyed by role/category, optionally clamped to
// [minFee, maxFee] in minor units. A zero bound means unbounded on that side.
type Setting struct {
	key    string
	rate   decimal.Decimal
	minFee int64
	maxFee int64

	guard guard.ConstructorGuard
}

// NewSetting creates a validated commission setting.
func NewSetting(key string, rate decimal.Decimal, minFee, maxFee int64) (*Setting, error) {
	setting := &Setting{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setting.setKey(key),
		setting.setRate(rate),
		setting.setBounds(minFee, maxFee),
	); err != nil {
		return nil, err
	}

	return setting, nil
}

// RestoreSetting reconstructs a setting from persistence.
func RestoreSetting(key string, rate decimal.Decimal, minFee, maxFee int64) (*Setting, error) {
	return NewSetting(key, rate, minFee, maxFee)
}

// Validate ensures the setting was created through a constructor.
func (s *Setting) Validate() error {
	if s == nil {
		return ErrSettingIsNotConstructed
	}
	return s.guard.Validate(ErrSettingIsNotConstructed)
}

// Key returns the setting key.
func (s *Setting) Key() string {
	return s.key
}

// Rate returns the rate in [0, 1].
func (s *Setting) Rate() decimal.Decimal {
	return s.rate
}

// MinFee returns the fee floor in minor units (0 = no floor).
func (s *Setting) MinFee() int64 {
	return s.minFee
}

// MaxFee returns the fee ceiling in minor units (0 = no ceiling).
func (s *Setting) MaxFee() int64 {
	return s.maxFee
}

// Update replaces the rate and clamp bounds. Already-priced orders keep the
// values captured at their creation.
func (s *Setting) Update(rate decimal.Decimal, minFee, maxFee int64) error {
	if err := s.Validate(); err != nil {
		return err
	}

	updated := Setting{}
	if err := errors.Join(
		updated.setRate(rate),
		updated.setBounds(minFee, maxFee),
	); err != nil {
		return err
	}

	s.rate = updated.rate
	s.minFee = updated.minFee
	s.maxFee = updated.maxFee
	return nil
}

func (s *Setting) setKey(key string) error {
	if key == "" {
		return errs.NewValueIsRequiredError("key")
	}
	s.key = key
	return nil
}

func (s *Setting) setRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return errs.NewValueIsOutOfRangeError("rate", rate.String(), "0", "1")
	}
	s.rate = rate
	return nil
}

func (s *Setting) setBounds(minFee, maxFee int64) error {
	if minFee < 0 {
		return errs.NewValueIsInvalidErrorWithCause("min fee is invalid", fmt.Errorf("%d is negative", minFee))
	}
	if maxFee < 0 {
		return errs.NewValueIsInvalidErrorWithCause("max fee is invalid", fmt.Errorf("%d is negative", maxFee))
	}
	if maxFee > 0 && maxFee < minFee {
		return errs.NewValueIsInvalidErrorWithCause(
			"max fee is invalid",
			fmt.Errorf("ceiling %d is below floor %d", maxFee, minFee),
		)
	}
	s.minFee = minFee
	s.maxFee = maxFee
	return nil
}
