package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"veil/internal/domain/subscription"
	"veil/internal/infrastructure/persistence/models"
	"veil/internal/shared/db"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type OrderRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewOrderRepository(database *gorm.DB, log logger.Interface) *OrderRepository {
	return &OrderRepository{
		db:     database,
		logger: log.Named("order_repository"),
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *subscription.Order) error {
	model := &models.OrderModel{
		OrderNo:   order.OrderNo,
		UserID:    order.UserID,
		PackageID: order.PackageID,
		Amount:    order.Amount,
		Status:    string(order.Status),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("order number already exists")
		}
		r.logger.Errorw("failed to create order", "error", err)
		return apperrors.NewInternalError("failed to create order")
	}

	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status subscription.OrderStatus) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return apperrors.NewInternalError("failed to update order status")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("order not found")
	}
	return nil
}

// MarkCompleted transitions an order to completed and records when it
// happened.
func (r *OrderRepository) MarkCompleted(ctx context.Context, id uint, completedAt time.Time) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       string(subscription.OrderStatusCompleted),
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return apperrors.NewInternalError("failed to complete order")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("order not found")
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*subscription.Order, error) {
	var model models.OrderModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, apperrors.NewInternalError("failed to find order")
	}
	return model.ToEntity(), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*subscription.Order, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count orders")
	}

	var modelsList []models.OrderModel
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&modelsList).Error
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list orders")
	}

	return ordersFromModels(modelsList), total, nil
}

// List returns all orders, optionally filtered by status.
func (r *OrderRepository) List(ctx context.Context, status string, page, pageSize int) ([]*subscription.Order, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.OrderModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count orders")
	}

	var modelsList []models.OrderModel
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&modelsList).Error
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list orders")
	}

	return ordersFromModels(modelsList), total, nil
}

// CountCompletedByUser counts completed orders, used for first-purchase
// rebate eligibility.
func (r *OrderRepository) CountCompletedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("user_id = ? AND status = ?", userID, string(subscription.OrderStatusCompleted)).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count completed orders")
	}
	return count, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.OrderModel{}).Count(&count).Error; err != nil {
		return 0, apperrors.NewInternalError("failed to count orders")
	}
	return count, nil
}

// TotalRevenue sums the amounts of all completed orders.
func (r *OrderRepository) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("status = ?", string(subscription.OrderStatusCompleted)).
		Select("COALESCE(SUM(amount),0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.NewInternalError("failed to sum revenue")
	}
	return total, nil
}

// DailyRevenue holds one day of completed-order revenue.
type DailyRevenue struct {
	Day     string `json:"day"`
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}

// RevenueByDay aggregates completed orders per calendar day since the cutoff.
func (r *OrderRepository) RevenueByDay(ctx context.Context, since time.Time) ([]DailyRevenue, error) {
	var rows []DailyRevenue
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Select("DATE(created_at) AS day, COALESCE(SUM(amount),0) AS revenue, COUNT(*) AS orders").
		Where("status = ? AND created_at >= ?", string(subscription.OrderStatusCompleted), since).
		Group("DATE(created_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to aggregate revenue by day", "error", err)
		return nil, apperrors.NewInternalError("failed to aggregate revenue")
	}
	return rows, nil
}

func ordersFromModels(modelsList []models.OrderModel) []*subscription.Order {
	orders := make([]*subscription.Order, 0, len(modelsList))
	for i := range modelsList {
		orders = append(orders, modelsList[i].ToEntity())
	}
	return orders
}
