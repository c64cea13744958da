package tariffrepo

import (
	"context"
	"errors"
	"fmt"

	"settlement/internal/core/domain/model/tariff"
	"settlement/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCommissionSettingRepository implements the commission setting
// repository using GORM. Settings are keyed by name, not UUID, so they
// sit outside the unit of work's aggregate tracking.
type GormCommissionSettingRepository struct {
	db *gorm.DB
}

// NewGormCommissionSettingRepository creates a new GORM-based commission
// setting repository.
func NewGormCommissionSettingRepository(db *gorm.DB) *GormCommissionSettingRepository {
	return &GormCommissionSettingRepository{db: db}
}

// Add persists a new commission setting.
func (r *GormCommissionSettingRepository) Add(ctx context.Context, aggregate *tariff.Setting) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return fmt.Errorf("failed to add commission setting %s: %w", aggregate.Key(), err)
	}

	return nil
}

// Update persists changes to an existing commission setting.
func (r *GormCommissionSettingRepository) Update(ctx context.Context, aggregate *tariff.Setting) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Where("key = ?", dto.Key).
		Select("*").
		Omit(clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return fmt.Errorf("failed to update commission setting %s: %w", aggregate.Key(), result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("commission setting", aggregate.Key())
	}

	return nil
}

// GetByKey retrieves a commission setting by its key.
func (r *GormCommissionSettingRepository) GetByKey(ctx context.Context, key string) (*tariff.Setting, error) {
	var dto CommissionSettingDTO
	if err := r.db.WithContext(ctx).First(&dto, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("commission setting", key)
		}
		return nil, fmt.Errorf("failed to get commission setting %s: %w", key, err)
	}

	return toDomain(dto)
}
