package models

import (
	"time"

	"veil/internal/domain/subscription"
	"veil/internal/shared/constants"
)

// PackageModel represents the database persistence model for packages
type PackageModel struct {
	ID            uint   `gorm:"primarykey"`
	Name          string `gorm:"not null;size:100"`
	Description   string `gorm:"type:text"`
	Price         int64  `gorm:"not null"`
	DurationDays  int    `gorm:"not null"`
	TrafficAmount int64  `gorm:"not null"`
	IsActive      bool   `gorm:"not null;default:true;index:idx_package_active"`
	SortOrder     int    `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (PackageModel) TableName() string {
	return constants.TablePackages
}

// ToEntity converts the model to a domain entity
func (m *PackageModel) ToEntity() *subscription.Package {
	return &subscription.Package{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Price:         m.Price,
		DurationDays:  m.DurationDays,
		TrafficAmount: m.TrafficAmount,
		IsActive:      m.IsActive,
		SortOrder:     m.SortOrder,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// PackageModelFromEntity converts a domain entity to a persistence model
func PackageModelFromEntity(p *subscription.Package) *PackageModel {
	return &PackageModel{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DurationDays:  p.DurationDays,
		TrafficAmount: p.TrafficAmount,
		IsActive:      p.IsActive,
		SortOrder:     p.SortOrder,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
