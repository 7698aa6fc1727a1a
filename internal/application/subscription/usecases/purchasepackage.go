package usecases

import (
	"context"
	"fmt"
	"time"

	"veil/internal/domain/subscription"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type PurchaseCommand struct {
	UserID    uint
	PackageID uint
}

type PurchaseResult struct {
	OrderID   uint
	OrderNo   string
	Amount    int64
	ExpiresAt time.Time
}

// PurchaseUseCase executes a package purchase as a single transaction:
// balance debit, ledger entry, quota grant, entitlement, and order
// completion all commit or roll back together. Cache invalidation and
// referral rebates run after commit and never fail the purchase.
type PurchaseUseCase struct {
	userRepo        UserRepository
	packageRepo     PackageRepository
	orderRepo       OrderRepository
	userPackageRepo UserPackageRepository
	coinRepo        CoinTransactionRepository
	pkgCache        UserPackageCache
	txRunner        TransactionRunner
	executor        TaskExecutor
	logger          logger.Interface
}

func NewPurchaseUseCase(
	userRepo UserRepository,
	packageRepo PackageRepository,
	orderRepo OrderRepository,
	userPackageRepo UserPackageRepository,
	coinRepo CoinTransactionRepository,
	pkgCache UserPackageCache,
	txRunner TransactionRunner,
	executor TaskExecutor,
	log logger.Interface,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		userRepo:        userRepo,
		packageRepo:     packageRepo,
		orderRepo:       orderRepo,
		userPackageRepo: userPackageRepo,
		coinRepo:        coinRepo,
		pkgCache:        pkgCache,
		txRunner:        txRunner,
		executor:        executor,
		logger:          log.Named("purchase_usecase"),
	}
}

func (uc *PurchaseUseCase) Execute(ctx context.Context, cmd PurchaseCommand) (*PurchaseResult, error) {
	var result PurchaseResult

	err := uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		pkg, err := uc.packageRepo.FindByID(txCtx, cmd.PackageID)
		if err != nil {
			return err
		}
		if !pkg.IsActive {
			return errors.NewValidationError("package is not available")
		}

		// Row lock so concurrent purchases serialize on the balance.
		u, err := uc.userRepo.FindByIDForUpdate(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if u.IsDisabled() {
			return errors.NewForbiddenError("account is disabled")
		}
		if !u.CanAfford(pkg.Price) {
			return errors.NewInsufficientBalanceError("insufficient balance")
		}

		now := time.Now()
		order := &subscription.Order{
			OrderNo:   subscription.NewOrderNo(u.ID, now),
			UserID:    u.ID,
			PackageID: pkg.ID,
			Amount:    pkg.Price,
			Status:    subscription.OrderStatusPending,
		}
		if err := uc.orderRepo.Create(txCtx, order); err != nil {
			return err
		}

		if err := uc.userRepo.AdjustBalance(txCtx, u.ID, -pkg.Price); err != nil {
			return err
		}
		if err := uc.coinRepo.Create(txCtx, &subscription.CoinTransaction{
			UserID:      u.ID,
			Amount:      -pkg.Price,
			Type:        subscription.CoinTransactionPurchase,
			Description: fmt.Sprintf("purchase %s (order %s)", pkg.Name, order.OrderNo),
		}); err != nil {
			return err
		}

		if err := uc.userRepo.AdjustTrafficQuota(txCtx, u.ID, pkg.TrafficAmount); err != nil {
			return err
		}

		expiresAt := now.AddDate(0, 0, pkg.DurationDays)
		if err := uc.userPackageRepo.Create(txCtx, &subscription.UserPackage{
			UserID:       u.ID,
			PackageID:    pkg.ID,
			OrderID:      order.ID,
			TrafficQuota: pkg.TrafficAmount,
			ExpiresAt:    expiresAt,
			Status:       subscription.UserPackageStatusActive,
		}); err != nil {
			return err
		}

		if err := uc.orderRepo.MarkCompleted(txCtx, order.ID, now); err != nil {
			return err
		}

		result = PurchaseResult{
			OrderID:   order.ID,
			OrderNo:   order.OrderNo,
			Amount:    order.Amount,
			ExpiresAt: expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("package purchased",
		"user_id", cmd.UserID,
		"package_id", cmd.PackageID,
		"order_no", result.OrderNo,
	)

	uc.executor.Submit("purchase_cache_invalidate", func() {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.pkgCache.Invalidate(bg, cmd.UserID); err != nil {
			uc.logger.Warnw("failed to invalidate package cache", "user_id", cmd.UserID, "error", err)
		}
	})
	uc.executor.Submit("referral_rebate", func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		uc.creditReferralRebate(bg, cmd.UserID, result.Amount)
	})

	return &result, nil
}

// creditReferralRebate pays the referrer a share of the referred user's
// first completed purchase. Runs in its own transaction so a failure here
// never affects the committed purchase.
func (uc *PurchaseUseCase) creditReferralRebate(ctx context.Context, buyerID uint, price int64) {
	buyer, err := uc.userRepo.FindByID(ctx, buyerID)
	if err != nil {
		uc.logger.Warnw("rebate check failed to load buyer", "user_id", buyerID, "error", err)
		return
	}

	referrerID, ok := buyer.WasReferredBy()
	if !ok {
		return
	}

	completed, err := uc.orderRepo.CountCompletedByUser(ctx, buyerID)
	if err != nil {
		uc.logger.Warnw("rebate check failed to count orders", "user_id", buyerID, "error", err)
		return
	}
	if completed != 1 {
		return
	}

	rebate := subscription.ReferralRebate(price)
	if rebate <= 0 {
		return
	}

	err = uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.userRepo.AdjustBalance(txCtx, referrerID, rebate); err != nil {
			return err
		}
		return uc.coinRepo.Create(txCtx, &subscription.CoinTransaction{
			UserID:      referrerID,
			Amount:      rebate,
			Type:        subscription.CoinTransactionReferral,
			Description: fmt.Sprintf("referral rebate for user %d", buyerID),
		})
	})
	if err != nil {
		uc.logger.Errorw("failed to credit referral rebate",
			"referrer_id", referrerID,
			"buyer_id", buyerID,
			"rebate", rebate,
			"error", err,
		)
		return
	}

	uc.logger.Infow("referral rebate credited",
		"referrer_id", referrerID,
		"buyer_id", buyerID,
		"rebate", rebate,
	)
}
