// Package tariffrepo provides data transfer objects and mapping functions
// for commission setting persistence.
package tariffrepo

import (
	"settlement/internal/core/domain/model/tariff"

	"github.com/shopspring/decimal"
)

// CommissionSettingDTO represents the database structure for persisting
// commission settings. Fee bounds are minor units; zero means unbounded.
type CommissionSettingDTO struct {
	Key    string          `gorm:"primaryKey;type:varchar(64)"`
	Rate   decimal.Decimal `gorm:"type:numeric(12,6)"`
	MinFee int64
	MaxFee int64
}

// TableName specifies the database table name for commission settings.
func (CommissionSettingDTO) TableName() string {
	return "commission_settings"
}

// fromDomain converts a commission setting aggregate to its database
// representation.
func fromDomain(aggregate *tariff.Setting) CommissionSettingDTO {
	return CommissionSettingDTO{
		Key:    aggregate.Key(),
		Rate:   aggregate.Rate(),
		MinFee: aggregate.MinFee(),
		MaxFee: aggregate.MaxFee(),
	}
}

// toDomain converts a database DTO to a commission setting aggregate.
func toDomain(dto CommissionSettingDTO) (*tariff.Setting, error) {
	return tariff.RestoreSetting(dto.Key, dto.Rate, dto.MinFee, dto.MaxFee)
}
