// Package usecases implements account-facing application operations.
package usecases

import (
	"context"

	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
)

// UserRepository is the persistence surface needed by user use cases.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uint) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByReferralCode(ctx context.Context, code string) (*user.User, error)
	CountReferredBy(ctx context.Context, referrerID uint) (int64, error)
}

// SubscriptionTokenRepository issues per-user subscription credentials.
type SubscriptionTokenRepository interface {
	Create(ctx context.Context, token *subscription.Token) error
}

// CoinTransactionRepository reads the coin ledger.
type CoinTransactionRepository interface {
	SumByUserAndType(ctx context.Context, userID uint, txType subscription.CoinTransactionType) (int64, error)
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*subscription.CoinTransaction, int64, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(userID uint, email string, isAdmin bool) (token string, expiresIn int64, err error)
}

// TokenVerifier validates a signed token and returns the user it was
// issued to.
type TokenVerifier interface {
	VerifyUserID(token string) (uint, error)
}

// CredentialGenerator produces random referral codes and subscription tokens.
type CredentialGenerator interface {
	SubscriptionToken() (string, error)
	ReferralCode() (string, error)
}

// TransactionRunner wraps a function in a database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
