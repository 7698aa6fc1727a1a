package repository

import (
	"context"

	"gorm.io/gorm"

	"veil/internal/domain/node"
	"veil/internal/infrastructure/persistence/models"
	"veil/internal/shared/db"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type TrafficLogRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewTrafficLogRepository(database *gorm.DB, log logger.Interface) *TrafficLogRepository {
	return &TrafficLogRepository{
		db:     database,
		logger: log.Named("traffic_log_repository"),
	}
}

func (r *TrafficLogRepository) Create(ctx context.Context, entry *node.TrafficLog) error {
	model := &models.TrafficLogModel{
		UserID:     entry.UserID,
		NodeID:     entry.NodeID,
		Upload:     entry.Upload,
		Download:   entry.Download,
		RecordedAt: entry.RecordedAt,
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create traffic log", "error", err)
		return apperrors.NewInternalError("failed to create traffic log")
	}

	entry.ID = model.ID
	return nil
}
