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

type SubscriptionTokenRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionTokenRepository(database *gorm.DB, log logger.Interface) *SubscriptionTokenRepository {
	return &SubscriptionTokenRepository{
		db:     database,
		logger: log.Named("subscription_token_repository"),
	}
}

func (r *SubscriptionTokenRepository) Create(ctx context.Context, token *subscription.Token) error {
	model := &models.SubscriptionTokenModel{
		UserID: token.UserID,
		Token:  token.Token,
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("subscription token already exists")
		}
		r.logger.Errorw("failed to create subscription token", "error", err)
		return apperrors.NewInternalError("failed to create subscription token")
	}

	token.ID = model.ID
	token.CreatedAt = model.CreatedAt
	token.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *SubscriptionTokenRepository) FindByToken(ctx context.Context, tokenStr string) (*subscription.Token, error) {
	var model models.SubscriptionTokenModel
	if err := db.GetTxFromContext(ctx, r.db).Where("token = ?", tokenStr).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("subscription token not found")
		}
		return nil, apperrors.NewInternalError("failed to find subscription token")
	}
	return model.ToEntity(), nil
}

func (r *SubscriptionTokenRepository) FindByUserID(ctx context.Context, userID uint) (*subscription.Token, error) {
	var model models.SubscriptionTokenModel
	if err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("subscription token not found")
		}
		return nil, apperrors.NewInternalError("failed to find subscription token")
	}
	return model.ToEntity(), nil
}

// TouchLastAccessed updates the access timestamp after a successful fetch.
func (r *SubscriptionTokenRepository) TouchLastAccessed(ctx context.Context, id uint, at time.Time) error {
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionTokenModel{}).
		Where("id = ?", id).
		Update("last_accessed", at).Error
	if err != nil {
		return apperrors.NewInternalError("failed to update last accessed")
	}
	return nil
}
