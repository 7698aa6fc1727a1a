package subscription

import "time"

// CoinTransactionType classifies balance movements.
type CoinTransactionType string

const (
	CoinTransactionPurchase    CoinTransactionType = "purchase"
	CoinTransactionReferral    CoinTransactionType = "referral"
	CoinTransactionAdminAdjust CoinTransactionType = "admin_adjust"
	CoinTransactionRefund      CoinTransactionType = "refund"
)

// CoinTransaction is an immutable ledger entry. Amount is signed:
// debits are negative, credits positive.
type CoinTransaction struct {
	ID          uint
	UserID      uint
	Amount      int64
	Type        CoinTransactionType
	Description string
	CreatedAt   time.Time
}

// ReferralRebateRate is the fraction of a referred user's first purchase
// credited to the referrer.
const ReferralRebateRate = 0.10

// ReferralRebate computes the rebate for a purchase price, rounded down
// to whole coins.
func ReferralRebate(price int64) int64 {
	return int64(float64(price) * ReferralRebateRate)
}
