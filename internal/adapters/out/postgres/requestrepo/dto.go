// Package requestrepo provides data transfer objects and mapping functions
// for release request persistence.
package requestrepo

import (
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/payout"

	"github.com/google/uuid"
)

// ReleaseRequestDTO represents the database structure for persisting release
// requests. The partial unique index keeps at most one pending row per order
// (status 1 is payout.StatusPending), backing the aggregate rule against
// concurrent filings.
type ReleaseRequestDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uniq_pending_release_request,where:status = 1"`
	RequestedByID uuid.UUID `gorm:"type:uuid"`
	RequestedRole int
	Reason        string
	Status        int        `gorm:"index"`
	DecidedByID   *uuid.UUID `gorm:"type:uuid"`
	DecisionNotes string
	CreatedAt     time.Time
	DecidedAt     *time.Time
}

// TableName specifies the database table name for release request entities.
func (ReleaseRequestDTO) TableName() string {
	return "release_requests"
}

// fromDomain converts a release request aggregate to its database
// representation.
func fromDomain(aggregate *payout.ReleaseRequest) ReleaseRequestDTO {
	var decidedByID *uuid.UUID
	if id := aggregate.DecidedBy(); id != nil {
		raw := id.Bytes()
		decidedByID = &raw
	}

	return ReleaseRequestDTO{
		ID:            aggregate.ID().Bytes(),
		OrderID:       aggregate.OrderID().Bytes(),
		RequestedByID: aggregate.RequestedBy().ID().Bytes(),
		RequestedRole: int(aggregate.RequestedBy().Role()),
		Reason:        aggregate.Reason(),
		Status:        int(aggregate.Status()),
		DecidedByID:   decidedByID,
		DecisionNotes: aggregate.DecisionNotes(),
		CreatedAt:     aggregate.CreatedAt(),
		DecidedAt:     aggregate.DecidedAt(),
	}
}

// toDomain converts a database DTO to a release request aggregate.
func toDomain(dto ReleaseRequestDTO) (*payout.ReleaseRequest, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	requesterID, err := kernel.UUIDFromBytes(dto.RequestedByID[:])
	if err != nil {
		return nil, err
	}
	requestedBy, err := kernel.NewActor(requesterID, kernel.Role(dto.RequestedRole))
	if err != nil {
		return nil, err
	}

	var decidedByID *kernel.UUID
	if dto.DecidedByID != nil {
		dID, decidedErr := kernel.UUIDFromBytes((*dto.DecidedByID)[:])
		if decidedErr != nil {
			return nil, decidedErr
		}
		decidedByID = &dID
	}

	return payout.RestoreReleaseRequest(
		id,
		orderID,
		requestedBy,
		dto.Reason,
		payout.Status(dto.Status),
		decidedByID,
		dto.DecisionNotes,
		dto.CreatedAt,
		dto.DecidedAt,
	)
}
