// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. This package implements the repository pattern for the
// order aggregate, handling the conversion between domain entities and their
// relational representation, order lines included.
package orderrepo

import (
	"errors"
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Monetary columns store minor units; the currency column applies to all of
// them. The version column backs the optimistic concurrency guard.
type OrderDTO struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BuyerID             uuid.UUID  `gorm:"type:uuid;index"`
	SellerID            uuid.UUID  `gorm:"type:uuid;index"`
	AgentID             *uuid.UUID `gorm:"type:uuid;index"`
	Variant             int
	Status              int `gorm:"index"`
	Version             int64
	Currency            string `gorm:"type:varchar(3)"`
	BaseTotal           int64
	DisplayTotal        int64
	CommissionTotal     int64
	DeliveryFee         int64
	Tax                 int64
	Discount            int64
	CreatedAt           time.Time
	ConfirmedAt         *time.Time
	PickedUpAt          *time.Time
	DeliveredAt         *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	ReleaseEligibleAt   *time.Time `gorm:"index"`
	EligibilityNotified bool
	Lines               []LineDTO `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// LineDTO represents one priced order line. Lines are written once at order
// creation and never updated afterwards; the captured rate is kept with full
// precision for audits.
type LineDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID `gorm:"type:uuid;index"`
	ItemID           uuid.UUID `gorm:"type:uuid"`
	Quantity         int
	UnitBasePrice    int64
	UnitDisplayPrice int64
	Rate             decimal.Decimal `gorm:"type:numeric(12,6)"`
	LineCommission   int64
	Flagged          bool
}

// TableName specifies the database table name for order lines.
func (LineDTO) TableName() string {
	return "order_lines"
}

// fromDomain converts an order domain aggregate to its database
// representation, including the order lines.
func fromDomain(aggregate *order.Order) OrderDTO {
	var agentID *uuid.UUID
	if id := aggregate.Agent(); id != nil {
		raw := id.Bytes()
		agentID = &raw
	}

	lines := make([]LineDTO, 0, len(aggregate.Lines()))
	for _, line := range aggregate.Lines() {
		lines = append(lines, LineDTO{
			ID:               line.ID().Bytes(),
			OrderID:          line.OrderID().Bytes(),
			ItemID:           line.ItemID().Bytes(),
			Quantity:         line.Quantity(),
			UnitBasePrice:    line.UnitBasePrice().Amount(),
			UnitDisplayPrice: line.UnitDisplayPrice().Amount(),
			Rate:             line.Rate(),
			LineCommission:   line.Commission().Amount(),
			Flagged:          line.Flagged(),
		})
	}

	return OrderDTO{
		ID:                  aggregate.ID().Bytes(),
		BuyerID:             aggregate.Buyer().Bytes(),
		SellerID:            aggregate.Seller().Bytes(),
		AgentID:             agentID,
		Variant:             int(aggregate.Variant()),
		Status:              int(aggregate.Status()),
		Version:             aggregate.Version(),
		Currency:            aggregate.Currency().String(),
		BaseTotal:           aggregate.BaseTotal().Amount(),
		DisplayTotal:        aggregate.DisplayTotal().Amount(),
		CommissionTotal:     aggregate.CommissionTotal().Amount(),
		DeliveryFee:         aggregate.DeliveryFee().Amount(),
		Tax:                 aggregate.Tax().Amount(),
		Discount:            aggregate.Discount().Amount(),
		CreatedAt:           aggregate.CreatedAt(),
		ConfirmedAt:         aggregate.ConfirmedAt(),
		PickedUpAt:          aggregate.PickedUpAt(),
		DeliveredAt:         aggregate.DeliveredAt(),
		CompletedAt:         aggregate.CompletedAt(),
		CancelledAt:         aggregate.CancelledAt(),
		ReleaseEligibleAt:   aggregate.ReleaseEligibleAt(),
		EligibilityNotified: aggregate.EligibilityNotified(),
		Lines:               lines,
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate, lines and timeline included, using
// RestoreOrder so every stored value passes domain validation again.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}
	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return nil, err
	}

	var agentID *kernel.UUID
	if dto.AgentID != nil {
		aID, agentErr := kernel.UUIDFromBytes((*dto.AgentID)[:])
		if agentErr != nil {
			return nil, agentErr
		}
		agentID = &aID
	}

	currency, err := kernel.NewCurrency(dto.Currency)
	if err != nil {
		return nil, err
	}

	var moneyErr error
	money := func(amount int64) kernel.Money {
		m, newErr := kernel.NewMoney(amount, currency)
		if newErr != nil {
			moneyErr = errors.Join(moneyErr, newErr)
		}
		return m
	}

	lines := make([]*order.Line, 0, len(dto.Lines))
	for _, lineDTO := range dto.Lines {
		line, lineErr := lineToDomain(lineDTO, currency)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	totals := order.Totals{
		Base:        money(dto.BaseTotal),
		Display:     money(dto.DisplayTotal),
		Commission:  money(dto.CommissionTotal),
		DeliveryFee: money(dto.DeliveryFee),
		Tax:         money(dto.Tax),
		Discount:    money(dto.Discount),
	}
	if moneyErr != nil {
		return nil, moneyErr
	}

	timeline := order.Timeline{
		CreatedAt:           dto.CreatedAt,
		ConfirmedAt:         dto.ConfirmedAt,
		PickedUpAt:          dto.PickedUpAt,
		DeliveredAt:         dto.DeliveredAt,
		CompletedAt:         dto.CompletedAt,
		CancelledAt:         dto.CancelledAt,
		ReleaseEligibleAt:   dto.ReleaseEligibleAt,
		EligibilityNotified: dto.EligibilityNotified,
	}

	return order.RestoreOrder(
		id,
		buyerID,
		sellerID,
		agentID,
		order.Variant(dto.Variant),
		order.Status(dto.Status),
		dto.Version,
		lines,
		totals,
		timeline,
	)
}

// lineToDomain converts a line DTO to its domain entity.
func lineToDomain(dto LineDTO, currency kernel.Currency) (*order.Line, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	itemID, err := kernel.UUIDFromBytes(dto.ItemID[:])
	if err != nil {
		return nil, err
	}

	unitBasePrice, err := kernel.NewMoney(dto.UnitBasePrice, currency)
	if err != nil {
		return nil, err
	}
	unitDisplayPrice, err := kernel.NewMoney(dto.UnitDisplayPrice, currency)
	if err != nil {
		return nil, err
	}
	lineCommission, err := kernel.NewMoney(dto.LineCommission, currency)
	if err != nil {
		return nil, err
	}

	return order.RestoreLine(
		id,
		orderID,
		itemID,
		dto.Quantity,
		unitBasePrice,
		unitDisplayPrice,
		dto.Rate,
		lineCommission,
		dto.Flagged,
	)
}
