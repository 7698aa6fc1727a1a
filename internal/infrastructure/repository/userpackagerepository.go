package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"veil/internal/domain/subscription"
	"veil/internal/infrastructure/persistence/models"
	"veil/internal/shared/db"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type UserPackageRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUserPackageRepository(database *gorm.DB, log logger.Interface) *UserPackageRepository {
	return &UserPackageRepository{
		db:     database,
		logger: log.Named("user_package_repository"),
	}
}

func (r *UserPackageRepository) Create(ctx context.Context, up *subscription.UserPackage) error {
	model := &models.UserPackageModel{
		UserID:       up.UserID,
		PackageID:    up.PackageID,
		OrderID:      up.OrderID,
		TrafficQuota: up.TrafficQuota,
		TrafficUsed:  up.TrafficUsed,
		ExpiresAt:    up.ExpiresAt,
		Status:       string(up.Status),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create user package", "error", err)
		return apperrors.NewInternalError("failed to create user package")
	}

	up.ID = model.ID
	up.CreatedAt = model.CreatedAt
	up.UpdatedAt = model.UpdatedAt
	return nil
}

// HasValidPackage reports whether the user holds an active entitlement
// that expires after the given time and still has traffic budget left.
func (r *UserPackageRepository) HasValidPackage(ctx context.Context, userID uint, now time.Time) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserPackageModel{}).
		Where("user_id = ? AND status = ? AND expires_at > ? AND traffic_used < traffic_quota",
			userID, string(subscription.UserPackageStatusActive), now).
		Count(&count).Error
	if err != nil {
		return false, apperrors.NewInternalError("failed to check user package")
	}
	return count > 0, nil
}

// LatestValid returns the non-exhausted entitlement with the latest
// expiry, or nil.
func (r *UserPackageRepository) LatestValid(ctx context.Context, userID uint, now time.Time) (*subscription.UserPackage, error) {
	var modelsList []models.UserPackageModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND status = ? AND expires_at > ? AND traffic_used < traffic_quota",
			userID, string(subscription.UserPackageStatusActive), now).
		Order("expires_at DESC").
		Limit(1).
		Find(&modelsList).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load user package")
	}
	if len(modelsList) == 0 {
		return nil, nil
	}
	return modelsList[0].ToEntity(), nil
}

func (r *UserPackageRepository) ListByUser(ctx context.Context, userID uint) ([]*subscription.UserPackage, error) {
	var modelsList []models.UserPackageModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("expires_at DESC").
		Find(&modelsList).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list user packages")
	}

	result := make([]*subscription.UserPackage, 0, len(modelsList))
	for i := range modelsList {
		result = append(result, modelsList[i].ToEntity())
	}
	return result, nil
}
