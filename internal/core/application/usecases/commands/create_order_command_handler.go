package commands

import (
	"context"
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/tariff"
	"settlement/internal/core/domain/services"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// Captures the platform rate and the chosen agent fee schedule from tariff
// settings, prices every line, and persists the order in "pending_payment".
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	cmd, _ := NewCreateOrderCommand(orderID, buyerID, sellerID,
//	    order.VariantStandard, currency, items, tariff.KeyFastDeliveryAgent, 0, 0)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// Order is now priced and awaiting escrow hold
type CreateOrderCommandHandler struct {
	uowFactory PricingUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// Requires a PricingUoWFactory for transactional persistence.
func NewCreateOrderCommandHandler(uowFactory PricingUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order creation command.
// Rates are read and applied inside the same transaction that persists the
// order, so a concurrent tariff update cannot split an order's pricing.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	settingRepo := uow.CommissionSettingRepository()
	platform, err := settingRepo.GetByKey(ctx, tariff.KeyPlatformCommission)
	if err != nil {
		return err
	}

	agentTariff, err := settingRepo.GetByKey(ctx, cmd.AgentFeeKey())
	if err != nil {
		return err
	}

	calculator := services.NewCommissionCalculator()

	lines := make([]*order.Line, 0, len(cmd.Items()))
	displaySubtotal, err := kernel.NewMoney(0, cmd.Currency())
	if err != nil {
		return err
	}

	for _, item := range cmd.Items() {
		base, err := kernel.NewMoney(item.UnitBasePrice, cmd.Currency())
		if err != nil {
			return err
		}

		display, err := calculator.DisplayPrice(base, platform.Rate())
		if err != nil {
			return err
		}

		line, err := order.NewLine(kernel.NewUUID(), cmd.OrderID(), item.ItemID, item.Quantity, base, display, platform.Rate())
		if err != nil {
			return err
		}

		lineSubtotal, err := display.MulQuantity(item.Quantity)
		if err != nil {
			return err
		}

		displaySubtotal, err = displaySubtotal.Add(lineSubtotal)
		if err != nil {
			return err
		}

		lines = append(lines, line)
	}

	deliveryFee, err := calculator.AgentFee(displaySubtotal, agentTariff)
	if err != nil {
		return err
	}

	tax, err := kernel.NewMoney(cmd.Tax(), cmd.Currency())
	if err != nil {
		return err
	}

	discount, err := kernel.NewMoney(cmd.Discount(), cmd.Currency())
	if err != nil {
		return err
	}

	newOrder, err := order.NewOrder(
		cmd.OrderID(),
		cmd.BuyerID(),
		cmd.SellerID(),
		cmd.Variant(),
		lines,
		deliveryFee,
		tax,
		discount,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
