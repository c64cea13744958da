package commands

import (
	"errors"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/tariff"
	"settlement/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrUpdateCommissionSettingCommandIsNotConstructed = errors.New(
		"UpdateCommissionSettingCommand must be created via NewUpdateCommissionSettingCommand constructor",
	)
	ErrSettingKeyIsUnknown = errors.New("setting key is not known to the engine")
)

// UpdateCommissionSettingCommand represents an admin changing a tariff rate
// or its fee clamp. Orders priced before the change keep their captured
// rates.
type UpdateCommissionSettingCommand struct { //nolint:recvcheck //using for validation
	key    string
	rate   decimal.Decimal
	minFee int64
	maxFee int64
	actor  kernel.Actor

	guard guard.ConstructorGuard
}

// NewUpdateCommissionSettingCommand creates a command to change a tariff.
// Validates that the key is one the engine reads; the rate and bounds are
// validated by the setting itself.
func NewUpdateCommissionSettingCommand(
	key string,
	rate decimal.Decimal,
	minFee int64,
	maxFee int64,
	actorID kernel.UUID,
	role kernel.Role,
) (UpdateCommissionSettingCommand, error) {
	updateCommand := UpdateCommissionSettingCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		updateCommand.setKey(key),
		updateCommand.setActor(actorID, role),
	); err != nil {
		return UpdateCommissionSettingCommand{}, err
	}

	updateCommand.rate = rate
	updateCommand.minFee = minFee
	updateCommand.maxFee = maxFee
	return updateCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateCommissionSettingCommandIsNotConstructed if validation fails.
func (c UpdateCommissionSettingCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCommissionSettingCommandIsNotConstructed)
}

// Key returns the tariff key being changed.
func (c UpdateCommissionSettingCommand) Key() string {
	return c.key
}

// Rate returns the new commission rate.
func (c UpdateCommissionSettingCommand) Rate() decimal.Decimal {
	return c.rate
}

// MinFee returns the new fee floor in minor units.
func (c UpdateCommissionSettingCommand) MinFee() int64 {
	return c.minFee
}

// MaxFee returns the new fee ceiling in minor units, zero for unbounded.
func (c UpdateCommissionSettingCommand) MaxFee() int64 {
	return c.maxFee
}

// Actor returns who changes the tariff.
func (c UpdateCommissionSettingCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *UpdateCommissionSettingCommand) setKey(key string) error {
	switch key {
	case tariff.KeyPlatformCommission, tariff.KeyFastDeliveryAgent, tariff.KeyPickupDeliveryAgent:
		c.key = key
		return nil
	default:
		return ErrSettingKeyIsUnknown
	}
}

func (c *UpdateCommissionSettingCommand) setActor(actorID kernel.UUID, role kernel.Role) error {
	actor, err := kernel.NewActor(actorID, role)
	if err != nil {
		return err
	}

	c.actor = actor
	return nil
}
