// Package repository implements persistence access on top of GORM.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"veil/internal/domain/user"
	"veil/internal/infrastructure/persistence/models"
	"veil/internal/shared/constants"
	"veil/internal/shared/db"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type UserRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUserRepository(database *gorm.DB, log logger.Interface) *UserRepository {
	return &UserRepository{
		db:     database,
		logger: log.Named("user_repository"),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := models.UserModelFromEntity(u)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("email already registered")
		}
		r.logger.Errorw("failed to create user", "error", err)
		return apperrors.NewInternalError("failed to create user")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.NewInternalError("failed to find user")
	}
	return model.ToEntity(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.NewInternalError("failed to find user")
	}
	return model.ToEntity(), nil
}

func (r *UserRepository) FindByReferralCode(ctx context.Context, code string) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where("referral_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("referral code not found")
		}
		return nil, apperrors.NewInternalError("failed to find user")
	}
	return model.ToEntity(), nil
}

// FindByIDForUpdate loads a user with a row lock. Must run inside a transaction.
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel
	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.NewInternalError("failed to lock user")
	}
	return model.ToEntity(), nil
}

// AdjustBalance applies a signed delta to the user's coin balance.
func (r *UserRepository) AdjustBalance(ctx context.Context, id uint, delta int64) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return apperrors.NewInternalError("failed to adjust balance")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

// AdjustTrafficQuota applies a signed delta to the user's traffic quota.
func (r *UserRepository) AdjustTrafficQuota(ctx context.Context, id uint, delta int64) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("traffic_quota", gorm.Expr("traffic_quota + ?", delta))
	if result.Error != nil {
		return apperrors.NewInternalError("failed to adjust traffic quota")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

// AddTrafficUsed accumulates consumed traffic reported by nodes.
func (r *UserRepository) AddTrafficUsed(ctx context.Context, id uint, delta int64) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("traffic_used", gorm.Expr("traffic_used + ?", delta))
	if result.Error != nil {
		return apperrors.NewInternalError("failed to update traffic used")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uint, status user.Status) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return apperrors.NewInternalError("failed to update user status")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

// List returns a page of users, optionally filtered by an email substring.
func (r *UserRepository) List(ctx context.Context, emailFilter string, page, pageSize int) ([]*user.User, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{})
	if emailFilter != "" {
		query = query.Where("email LIKE ?", "%"+emailFilter+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count users")
	}

	var modelsList []models.UserModel
	err := query.Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&modelsList).Error
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list users")
	}

	users := make([]*user.User, 0, len(modelsList))
	for i := range modelsList {
		users = append(users, modelsList[i].ToEntity())
	}
	return users, total, nil
}

// ListActiveSubscribers returns users allowed to connect to nodes: active
// status, a valid entitlement, and quota remaining.
func (r *UserRepository) ListActiveSubscribers(ctx context.Context, now time.Time) ([]*user.User, error) {
	var modelsList []models.UserModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("status = ?", string(user.StatusActive)).
		Where("traffic_used < traffic_quota").
		Where("id IN (?)", r.db.
			Table(constants.TableUserPackages).
			Select("user_id").
			Where("status = ? AND expires_at > ? AND traffic_used < traffic_quota", "active", now)).
		Find(&modelsList).Error
	if err != nil {
		r.logger.Errorw("failed to list active subscribers", "error", err)
		return nil, apperrors.NewInternalError("failed to list active subscribers")
	}

	users := make([]*user.User, 0, len(modelsList))
	for i := range modelsList {
		users = append(users, modelsList[i].ToEntity())
	}
	return users, nil
}

func (r *UserRepository) CountReferredBy(ctx context.Context, referrerID uint) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("referred_by = ?", referrerID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count referred users")
	}
	return count, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return 0, apperrors.NewInternalError("failed to count users")
	}
	return count, nil
}

func (r *UserRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("status = ?", string(user.StatusActive)).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count active users")
	}
	return count, nil
}

// TopTrafficConsumers returns the heaviest users for the traffic stats view.
func (r *UserRepository) TopTrafficConsumers(ctx context.Context, limit int) ([]*user.User, error) {
	var modelsList []models.UserModel
	err := db.GetTxFromContext(ctx, r.db).
		Order("traffic_used DESC").
		Limit(limit).
		Find(&modelsList).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list top traffic consumers")
	}

	users := make([]*user.User, 0, len(modelsList))
	for i := range modelsList {
		users = append(users, modelsList[i].ToEntity())
	}
	return users, nil
}

// TrafficTotals sums quota and usage across all users.
func (r *UserRepository) TrafficTotals(ctx context.Context) (quota int64, used int64, err error) {
	row := struct {
		Quota int64
		Used  int64
	}{}
	err = db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Select("COALESCE(SUM(traffic_quota),0) AS quota, COALESCE(SUM(traffic_used),0) AS used").
		Scan(&row).Error
	if err != nil {
		return 0, 0, apperrors.NewInternalError("failed to sum traffic totals")
	}
	return row.Quota, row.Used, nil
}
