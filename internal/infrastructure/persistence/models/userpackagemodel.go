package models

import (
	"time"

	"veil/internal/domain/subscription"
	"veil/internal/shared/constants"
)

// UserPackageModel represents the database persistence model for entitlements
type UserPackageModel struct {
	ID           uint      `gorm:"primarykey"`
	UserID       uint      `gorm:"not null;index:idx_user_package_user"`
	PackageID    uint      `gorm:"not null"`
	OrderID      uint      `gorm:"not null;index:idx_user_package_order"`
	TrafficQuota int64     `gorm:"not null;default:0"`
	TrafficUsed  int64     `gorm:"not null;default:0"`
	ExpiresAt    time.Time `gorm:"not null"`
	Status       string    `gorm:"not null;default:active;size:20;index:idx_user_package_user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (UserPackageModel) TableName() string {
	return constants.TableUserPackages
}

// ToEntity converts the model to a domain entity
func (m *UserPackageModel) ToEntity() *subscription.UserPackage {
	return &subscription.UserPackage{
		ID:           m.ID,
		UserID:       m.UserID,
		PackageID:    m.PackageID,
		OrderID:      m.OrderID,
		TrafficQuota: m.TrafficQuota,
		TrafficUsed:  m.TrafficUsed,
		ExpiresAt:    m.ExpiresAt,
		Status:       subscription.UserPackageStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
