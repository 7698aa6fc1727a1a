package models

import (
	"time"

	"veil/internal/domain/subscription"
	"veil/internal/shared/constants"
)

// SubscriptionTokenModel represents the database persistence model for subscription tokens
type SubscriptionTokenModel struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"uniqueIndex;not null"`
	Token        string `gorm:"uniqueIndex;not null;size:64"`
	LastAccessed *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionTokenModel) TableName() string {
	return constants.TableSubscriptionTokens
}

// ToEntity converts the model to a domain entity
func (m *SubscriptionTokenModel) ToEntity() *subscription.Token {
	return &subscription.Token{
		ID:           m.ID,
		UserID:       m.UserID,
		Token:        m.Token,
		LastAccessed: m.LastAccessed,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
