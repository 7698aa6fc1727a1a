package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"veil/internal/domain/subscription"
	"veil/internal/infrastructure/persistence/models"
	"veil/internal/shared/db"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type PackageRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPackageRepository(database *gorm.DB, log logger.Interface) *PackageRepository {
	return &PackageRepository{
		db:     database,
		logger: log.Named("package_repository"),
	}
}

func (r *PackageRepository) FindByID(ctx context.Context, id uint) (*subscription.Package, error) {
	var model models.PackageModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("package not found")
		}
		return nil, apperrors.NewInternalError("failed to find package")
	}
	return model.ToEntity(), nil
}

// ListActive returns purchasable packages in display order.
func (r *PackageRepository) ListActive(ctx context.Context) ([]*subscription.Package, error) {
	var modelsList []models.PackageModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("sort_order, id").
		Find(&modelsList).Error
	if err != nil {
		r.logger.Errorw("failed to list active packages", "error", err)
		return nil, apperrors.NewInternalError("failed to list packages")
	}

	packages := make([]*subscription.Package, 0, len(modelsList))
	for i := range modelsList {
		packages = append(packages, modelsList[i].ToEntity())
	}
	return packages, nil
}
