package subscription

import (
	"fmt"
	"time"
)

// OrderStatus tracks an order through its lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order records a package purchase. CompletedAt is set exactly once,
// when the order reaches the completed status.
type Order struct {
	ID          uint
	OrderNo     string
	UserID      uint
	PackageID   uint
	Amount      int64
	Status      OrderStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrderNo builds the externally visible order number.
func NewOrderNo(userID uint, at time.Time) string {
	return fmt.Sprintf("ORD-%d-%d", userID, at.UnixMilli())
}
