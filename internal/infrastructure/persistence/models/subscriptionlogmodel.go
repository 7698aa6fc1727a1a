package models

import (
	"time"

	"veil/internal/domain/subscription"
	"veil/internal/shared/constants"
)

// SubscriptionLogModel represents the database persistence model for access logs
type SubscriptionLogModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index:idx_sub_log_user"`
	Token     string `gorm:"not null;size:64"`
	ClientIP  string `gorm:"not null;default:'';size:64"`
	UserAgent string `gorm:"not null;default:'';size:512"`
	Result    string `gorm:"not null;size:20;index:idx_sub_log_result"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionLogModel) TableName() string {
	return constants.TableSubscriptionLogs
}

// ToEntity converts the model to a domain entity
func (m *SubscriptionLogModel) ToEntity() *subscription.AccessLog {
	return &subscription.AccessLog{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		ClientIP:  m.ClientIP,
		UserAgent: m.UserAgent,
		Result:    subscription.AccessResult(m.Result),
		CreatedAt: m.CreatedAt,
	}
}
