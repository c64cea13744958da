package commands

import (
	"context"
	"errors"
	"fmt"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/tariff"
	"settlement/internal/pkg/errs"
)

// UpdateCommissionSettingCommandHandler handles tariff maintenance.
// Changes apply to orders priced after the write; existing orders keep the
// rates captured at their creation.
type UpdateCommissionSettingCommandHandler struct {
	uowFactory SettingUoWFactory
}

// NewUpdateCommissionSettingCommandHandler creates a handler for tariff updates.
func NewUpdateCommissionSettingCommandHandler(uowFactory SettingUoWFactory) UpdateCommissionSettingCommandHandler {
	return UpdateCommissionSettingCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the tariff update command.
// A key the seed never wrote is created on first update.
func (h UpdateCommissionSettingCommandHandler) Handle(ctx context.Context, cmd UpdateCommissionSettingCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !cmd.Actor().Is(kernel.RoleAdmin) {
		return fmt.Errorf("%w: tariff changes require an admin", order.ErrRoleNotAllowed)
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	settingRepo := uow.CommissionSettingRepository()
	setting, err := settingRepo.GetByKey(ctx, cmd.Key())
	switch {
	case err == nil:
		if err = setting.Update(cmd.Rate(), cmd.MinFee(), cmd.MaxFee()); err != nil {
			return err
		}
		if err = settingRepo.Update(ctx, setting); err != nil {
			return err
		}
	case errors.Is(err, errs.ErrObjectNotFound):
		setting, err = tariff.NewSetting(cmd.Key(), cmd.Rate(), cmd.MinFee(), cmd.MaxFee())
		if err != nil {
			return err
		}
		if err = settingRepo.Add(ctx, setting); err != nil {
			return err
		}
	default:
		return err
	}

	return uow.Commit(ctx)
}
