package usecases

import (
	"context"
	"fmt"

	"veil/internal/domain/subscription"
	"veil/internal/shared/logger"
)

// recentTransactionCount bounds the ledger slice shown on the balance view.
const recentTransactionCount = 10

type GetBalanceResult struct {
	Balance            int64
	RecentTransactions []*subscription.CoinTransaction
}

// GetBalanceUseCase returns the coin balance together with the most
// recent ledger entries.
type GetBalanceUseCase struct {
	userRepo UserRepository
	coinRepo CoinTransactionRepository
}

func NewGetBalanceUseCase(userRepo UserRepository, coinRepo CoinTransactionRepository) *GetBalanceUseCase {
	return &GetBalanceUseCase{userRepo: userRepo, coinRepo: coinRepo}
}

func (uc *GetBalanceUseCase) Execute(ctx context.Context, userID uint) (*GetBalanceResult, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, _, err := uc.coinRepo.ListByUser(ctx, userID, 1, recentTransactionCount)
	if err != nil {
		return nil, err
	}

	return &GetBalanceResult{
		Balance:            u.Balance,
		RecentTransactions: recent,
	}, nil
}

type GetTrafficResult struct {
	TrafficQuota int64
	TrafficUsed  int64
	Remaining    int64
}

type GetTrafficUseCase struct {
	userRepo UserRepository
}

func NewGetTrafficUseCase(userRepo UserRepository) *GetTrafficUseCase {
	return &GetTrafficUseCase{userRepo: userRepo}
}

func (uc *GetTrafficUseCase) Execute(ctx context.Context, userID uint) (*GetTrafficResult, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining := u.TrafficQuota - u.TrafficUsed
	if remaining < 0 {
		remaining = 0
	}

	return &GetTrafficResult{
		TrafficQuota: u.TrafficQuota,
		TrafficUsed:  u.TrafficUsed,
		Remaining:    remaining,
	}, nil
}

type GetReferralResult struct {
	ReferralCode string
	ReferralLink string
}

// GetReferralUseCase returns the user's referral code and a shareable link.
type GetReferralUseCase struct {
	userRepo    UserRepository
	frontendURL string
}

func NewGetReferralUseCase(userRepo UserRepository, frontendURL string) *GetReferralUseCase {
	return &GetReferralUseCase{userRepo: userRepo, frontendURL: frontendURL}
}

func (uc *GetReferralUseCase) Execute(ctx context.Context, userID uint) (*GetReferralResult, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GetReferralResult{
		ReferralCode: u.ReferralCode,
		ReferralLink: fmt.Sprintf("%s/register?ref=%s", uc.frontendURL, u.ReferralCode),
	}, nil
}

type GetReferralStatsResult struct {
	TotalReferred int64
	TotalRebate   int64
}

type GetReferralStatsUseCase struct {
	userRepo UserRepository
	coinRepo CoinTransactionRepository
	logger   logger.Interface
}

func NewGetReferralStatsUseCase(userRepo UserRepository, coinRepo CoinTransactionRepository, log logger.Interface) *GetReferralStatsUseCase {
	return &GetReferralStatsUseCase{
		userRepo: userRepo,
		coinRepo: coinRepo,
		logger:   log.Named("referral_stats_usecase"),
	}
}

func (uc *GetReferralStatsUseCase) Execute(ctx context.Context, userID uint) (*GetReferralStatsResult, error) {
	referred, err := uc.userRepo.CountReferredBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	rebate, err := uc.coinRepo.SumByUserAndType(ctx, userID, subscription.CoinTransactionReferral)
	if err != nil {
		return nil, err
	}

	return &GetReferralStatsResult{
		TotalReferred: referred,
		TotalRebate:   rebate,
	}, nil
}
