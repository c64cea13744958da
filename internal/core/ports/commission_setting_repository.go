package ports

import (
	"context"

	"settlement/internal/core/domain/model/tariff"
)

// CommissionSettingRepository defines the persistence contract for tariff
// settings. Settings are read at order creation to capture rates and written
// only by admin updates and the startup seed.
type CommissionSettingRepository interface {
	// Add persists a new setting row.
	Add(ctx context.Context, aggregate *tariff.Setting) error

	// Update persists changes to an existing setting.
	Update(ctx context.Context, aggregate *tariff.Setting) error

	// GetByKey retrieves a setting by its well-known key.
	GetByKey(ctx context.Context, key string) (*tariff.Setting, error)
}
