package models

import (
	"time"

	"gorm.io/gorm"

	"veil/internal/domain/subscription"
	"veil/internal/shared/constants"
)

// OrderModel represents the database persistence model for orders
type OrderModel struct {
	ID        uint   `gorm:"primarykey"`
	OrderNo   string `gorm:"uniqueIndex;not null;size:64"`
	UserID    uint   `gorm:"not null;index:idx_order_user"`
	PackageID uint   `gorm:"not null"`
	Amount      int64  `gorm:"not null"`
	Status      string `gorm:"not null;default:pending;size:20;index:idx_order_user"`
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (OrderModel) TableName() string {
	return constants.TableOrders
}

// BeforeCreate hook for GORM
func (m *OrderModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = string(subscription.OrderStatusPending)
	}
	return nil
}

// ToEntity converts the model to a domain entity
func (m *OrderModel) ToEntity() *subscription.Order {
	return &subscription.Order{
		ID:          m.ID,
		OrderNo:     m.OrderNo,
		UserID:      m.UserID,
		PackageID:   m.PackageID,
		Amount:      m.Amount,
		Status:      subscription.OrderStatus(m.Status),
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
