package repository

import (
	"context"

	"gorm.io/gorm"

	"veil/internal/domain/subscription"
	"veil/internal/infrastructure/persistence/models"
	"veil/internal/shared/db"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type SubscriptionLogRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionLogRepository(database *gorm.DB, log logger.Interface) *SubscriptionLogRepository {
	return &SubscriptionLogRepository{
		db:     database,
		logger: log.Named("subscription_log_repository"),
	}
}

func (r *SubscriptionLogRepository) Create(ctx context.Context, entry *subscription.AccessLog) error {
	model := &models.SubscriptionLogModel{
		UserID:    entry.UserID,
		Token:     entry.Token,
		ClientIP:  entry.ClientIP,
		UserAgent: entry.UserAgent,
		Result:    string(entry.Result),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription log", "error", err)
		return apperrors.NewInternalError("failed to record access log")
	}

	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	return nil
}

// List returns access logs, newest first, optionally filtered by user and result.
func (r *SubscriptionLogRepository) List(ctx context.Context, userID uint, result string, page, pageSize int) ([]*subscription.AccessLog, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionLogModel{})
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if result != "" {
		query = query.Where("result = ?", result)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count access logs")
	}

	var modelsList []models.SubscriptionLogModel
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&modelsList).Error
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list access logs")
	}

	logs := make([]*subscription.AccessLog, 0, len(modelsList))
	for i := range modelsList {
		logs = append(logs, modelsList[i].ToEntity())
	}
	return logs, total, nil
}
