package requestrepo

import (
	"context"
	"errors"
	"fmt"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/payout"
	"settlement/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReleaseRequestRepository implements ReleaseRequestRepository using GORM.
type GormReleaseRequestRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormReleaseRequestRepository creates a new GORM release request repository.
func NewGormReleaseRequestRepository(db *gorm.DB, tracker aggregateTracker) *GormReleaseRequestRepository {
	return &GormReleaseRequestRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a newly filed request to the database.
func (r *GormReleaseRequestRepository) Add(ctx context.Context, aggregate *payout.ReleaseRequest) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves a decided request. The write matches only while the stored
// row is still pending; a racing decision affects zero rows and fails with
// payout.ErrRequestNotPending.
func (r *GormReleaseRequestRepository) Update(ctx context.Context, aggregate *payout.ReleaseRequest) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&ReleaseRequestDTO{}).
		Where("id = ? AND status = ?", dto.ID, int(payout.StatusPending)).
		Select("*").
		Omit(clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: request %s was already decided", payout.ErrRequestNotPending, aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a request by ID.
func (r *GormReleaseRequestRepository) Get(ctx context.Context, id kernel.UUID) (*payout.ReleaseRequest, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ReleaseRequestDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("release request", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetPendingByOrderID retrieves the order's open request.
func (r *GormReleaseRequestRepository) GetPendingByOrderID(ctx context.Context, orderID kernel.UUID) (*payout.ReleaseRequest, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto ReleaseRequestDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND status = ?", orderID.Bytes(), int(payout.StatusPending)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("pending release request", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
