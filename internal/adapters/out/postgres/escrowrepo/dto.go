// Package escrowrepo provides data transfer objects and mapping functions
// for escrow persistence. The escrows table is the fund ledger: one row per
// paid order, closed exactly once by a release or a refund.
package escrowrepo

import (
	"time"

	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EscrowDTO represents the database structure for persisting escrow
// aggregates. The unique index on OrderID enforces at most one hold per
// order at the storage level.
type EscrowDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Amount        int64
	Currency      string `gorm:"type:varchar(3)"`
	Status        int    `gorm:"index"`
	HeldAt        time.Time
	ReleasedAt    *time.Time
	RefundedAt    *time.Time
	ReleaseReason string
}

// TableName specifies the database table name for escrow entities.
func (EscrowDTO) TableName() string {
	return "escrows"
}

// fromDomain converts an escrow domain aggregate to its database
// representation.
func fromDomain(aggregate *escrow.Escrow) EscrowDTO {
	return EscrowDTO{
		ID:            aggregate.ID().Bytes(),
		OrderID:       aggregate.OrderID().Bytes(),
		Amount:        aggregate.Amount().Amount(),
		Currency:      aggregate.Amount().Currency().String(),
		Status:        int(aggregate.Status()),
		HeldAt:        aggregate.HeldAt(),
		ReleasedAt:    aggregate.ReleasedAt(),
		RefundedAt:    aggregate.RefundedAt(),
		ReleaseReason: aggregate.ReleaseReason(),
	}
}

// toDomain converts a database DTO to an escrow domain aggregate.
func toDomain(dto EscrowDTO) (*escrow.Escrow, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	currency, err := kernel.NewCurrency(dto.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := kernel.NewMoney(dto.Amount, currency)
	if err != nil {
		return nil, err
	}

	return escrow.RestoreEscrow(
		id,
		orderID,
		amount,
		escrow.Status(dto.Status),
		dto.HeldAt,
		dto.ReleasedAt,
		dto.RefundedAt,
		dto.ReleaseReason,
	)
}
