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

type CoinTransactionRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewCoinTransactionRepository(database *gorm.DB, log logger.Interface) *CoinTransactionRepository {
	return &CoinTransactionRepository{
		db:     database,
		logger: log.Named("coin_transaction_repository"),
	}
}

func (r *CoinTransactionRepository) Create(ctx context.Context, tx *subscription.CoinTransaction) error {
	model := &models.CoinTransactionModel{
		UserID:      tx.UserID,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Description: tx.Description,
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create coin transaction", "error", err)
		return apperrors.NewInternalError("failed to record coin transaction")
	}

	tx.ID = model.ID
	tx.CreatedAt = model.CreatedAt
	return nil
}

// SumByUserAndType totals ledger entries, e.g. referral earnings per referrer.
func (r *CoinTransactionRepository) SumByUserAndType(ctx context.Context, userID uint, txType subscription.CoinTransactionType) (int64, error) {
	var total int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.CoinTransactionModel{}).
		Where("user_id = ? AND type = ?", userID, string(txType)).
		Select("COALESCE(SUM(amount),0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.NewInternalError("failed to sum coin transactions")
	}
	return total, nil
}

func (r *CoinTransactionRepository) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*subscription.CoinTransaction, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.CoinTransactionModel{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count coin transactions")
	}

	var modelsList []models.CoinTransactionModel
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&modelsList).Error
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list coin transactions")
	}

	txs := make([]*subscription.CoinTransaction, 0, len(modelsList))
	for i := range modelsList {
		txs = append(txs, modelsList[i].ToEntity())
	}
	return txs, total, nil
}
