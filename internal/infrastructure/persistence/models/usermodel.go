// Package models contains GORM persistence models. They form the
// anti-corruption layer between domain entities and table schemas.
package models

import (
	"time"

	"gorm.io/gorm"

	"veil/internal/domain/user"
	"veil/internal/shared/constants"
)

// UserModel represents the database persistence model for users
type UserModel struct {
	ID           uint   `gorm:"primarykey"`
	Email        string `gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string `gorm:"not null;size:255"`
	Balance      int64  `gorm:"not null;default:0"`
	TrafficQuota int64  `gorm:"not null;default:0"`
	TrafficUsed  int64  `gorm:"not null;default:0"`
	Status       string `gorm:"not null;default:active;size:20;index:idx_user_status"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	ReferralCode string `gorm:"uniqueIndex;not null;size:8"`
	ReferredBy   *uint  `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return constants.TableUsers
}

// BeforeCreate hook for GORM
func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = string(user.StatusActive)
	}
	return nil
}

// ToEntity converts the model to a domain entity
func (m *UserModel) ToEntity() *user.User {
	return &user.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Balance:      m.Balance,
		TrafficQuota: m.TrafficQuota,
		TrafficUsed:  m.TrafficUsed,
		Status:       user.Status(m.Status),
		IsAdmin:      m.IsAdmin,
		ReferralCode: m.ReferralCode,
		ReferredBy:   m.ReferredBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a persistence model
func UserModelFromEntity(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Balance:      u.Balance,
		TrafficQuota: u.TrafficQuota,
		TrafficUsed:  u.TrafficUsed,
		Status:       string(u.Status),
		IsAdmin:      u.IsAdmin,
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
