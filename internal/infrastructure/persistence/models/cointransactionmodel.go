package models

import (
	"time"

	"veil/internal/domain/subscription"
	"veil/internal/shared/constants"
)

// CoinTransactionModel represents the database persistence model for the coin ledger
type CoinTransactionModel struct {
	ID          uint   `gorm:"primarykey"`
	UserID      uint   `gorm:"not null;index:idx_coin_tx_user"`
	Amount      int64  `gorm:"not null"`
	Type        string `gorm:"not null;size:20"`
	Description string `gorm:"not null;default:'';size:255"`
	CreatedAt   time.Time
}

// TableName specifies the table name for GORM
func (CoinTransactionModel) TableName() string {
	return constants.TableCoinTransactions
}

// ToEntity converts the model to a domain entity
func (m *CoinTransactionModel) ToEntity() *subscription.CoinTransaction {
	return &subscription.CoinTransaction{
		ID:          m.ID,
		UserID:      m.UserID,
		Amount:      m.Amount,
		Type:        subscription.CoinTransactionType(m.Type),
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}
