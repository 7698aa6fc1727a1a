package usecases

import (
	"context"

	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type ListUsersCommand struct {
	EmailFilter string
	Page        int
	PageSize    int
}

type ListUsersResult struct {
	Users []*user.User
	Total int64
}

type ListUsersUseCase struct {
	userRepo UserRepository
}

func NewListUsersUseCase(userRepo UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, cmd ListUsersCommand) (*ListUsersResult, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 20
	}

	users, total, err := uc.userRepo.List(ctx, cmd.EmailFilter, cmd.Page, cmd.PageSize)
	if err != nil {
		return nil, err
	}
	return &ListUsersResult{Users: users, Total: total}, nil
}

type GetUserUseCase struct {
	userRepo UserRepository
}

func NewGetUserUseCase(userRepo UserRepository) *GetUserUseCase {
	return &GetUserUseCase{userRepo: userRepo}
}

func (uc *GetUserUseCase) Execute(ctx context.Context, userID uint) (*user.User, error) {
	return uc.userRepo.FindByID(ctx, userID)
}

type UpdateUserStatusCommand struct {
	UserID      uint
	Status      string
	AdminUserID uint
}

// UpdateUserStatusUseCase enables or disables an account. The cached
// entitlement snapshot is invalidated so node sync and subscription
// delivery see the change before the TTL would expire it.
type UpdateUserStatusUseCase struct {
	userRepo UserRepository
	pkgCache UserPackageCache
	logger   logger.Interface
}

func NewUpdateUserStatusUseCase(userRepo UserRepository, pkgCache UserPackageCache, log logger.Interface) *UpdateUserStatusUseCase {
	return &UpdateUserStatusUseCase{
		userRepo: userRepo,
		pkgCache: pkgCache,
		logger:   log.Named("update_user_status_usecase"),
	}
}

func (uc *UpdateUserStatusUseCase) Execute(ctx context.Context, cmd UpdateUserStatusCommand) error {
	status := user.Status(cmd.Status)
	if !status.Valid() {
		return errors.NewValidationError("invalid user status", cmd.Status)
	}
	if cmd.UserID == cmd.AdminUserID && status == user.StatusDisabled {
		return errors.NewValidationError("cannot disable your own account")
	}

	if err := uc.userRepo.UpdateStatus(ctx, cmd.UserID, status); err != nil {
		return err
	}

	if err := uc.pkgCache.Invalidate(ctx, cmd.UserID); err != nil {
		uc.logger.Warnw("failed to invalidate package cache", "user_id", cmd.UserID, "error", err)
	}

	uc.logger.Infow("user status updated",
		"user_id", cmd.UserID,
		"status", cmd.Status,
		"admin_id", cmd.AdminUserID,
	)
	return nil
}

type AdjustBalanceCommand struct {
	UserID      uint
	Delta       int64
	Description string
	AdminUserID uint
}

// AdjustBalanceUseCase credits or debits an account and records the
// movement in the coin ledger atomically.
type AdjustBalanceUseCase struct {
	userRepo UserRepository
	coinRepo CoinTransactionRepository
	txRunner TransactionRunner
	logger   logger.Interface
}

func NewAdjustBalanceUseCase(userRepo UserRepository, coinRepo CoinTransactionRepository, txRunner TransactionRunner, log logger.Interface) *AdjustBalanceUseCase {
	return &AdjustBalanceUseCase{
		userRepo: userRepo,
		coinRepo: coinRepo,
		txRunner: txRunner,
		logger:   log.Named("adjust_balance_usecase"),
	}
}

func (uc *AdjustBalanceUseCase) Execute(ctx context.Context, cmd AdjustBalanceCommand) error {
	if cmd.Delta == 0 {
		return errors.NewValidationError("adjustment amount must be non-zero")
	}

	u, err := uc.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if cmd.Delta < 0 && u.Balance+cmd.Delta < 0 {
		return errors.NewValidationError("adjustment would make balance negative")
	}

	err = uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.userRepo.AdjustBalance(txCtx, cmd.UserID, cmd.Delta); err != nil {
			return err
		}
		return uc.coinRepo.Create(txCtx, &subscription.CoinTransaction{
			UserID:      cmd.UserID,
			Amount:      cmd.Delta,
			Type:        subscription.CoinTransactionAdminAdjust,
			Description: cmd.Description,
		})
	})
	if err != nil {
		return err
	}

	uc.logger.Infow("balance adjusted",
		"user_id", cmd.UserID,
		"delta", cmd.Delta,
		"admin_id", cmd.AdminUserID,
	)
	return nil
}

type AdjustTrafficCommand struct {
	UserID      uint
	Delta       int64
	AdminUserID uint
}

type AdjustTrafficUseCase struct {
	userRepo UserRepository
	pkgCache UserPackageCache
	logger   logger.Interface
}

func NewAdjustTrafficUseCase(userRepo UserRepository, pkgCache UserPackageCache, log logger.Interface) *AdjustTrafficUseCase {
	return &AdjustTrafficUseCase{
		userRepo: userRepo,
		pkgCache: pkgCache,
		logger:   log.Named("adjust_traffic_usecase"),
	}
}

func (uc *AdjustTrafficUseCase) Execute(ctx context.Context, cmd AdjustTrafficCommand) error {
	if cmd.Delta == 0 {
		return errors.NewValidationError("adjustment amount must be non-zero")
	}

	u, err := uc.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if cmd.Delta < 0 && u.TrafficQuota+cmd.Delta < 0 {
		return errors.NewValidationError("adjustment would make quota negative")
	}

	if err := uc.userRepo.AdjustTrafficQuota(ctx, cmd.UserID, cmd.Delta); err != nil {
		return err
	}

	if err := uc.pkgCache.Invalidate(ctx, cmd.UserID); err != nil {
		uc.logger.Warnw("failed to invalidate package cache", "user_id", cmd.UserID, "error", err)
	}

	uc.logger.Infow("traffic quota adjusted",
		"user_id", cmd.UserID,
		"delta", cmd.Delta,
		"admin_id", cmd.AdminUserID,
	)
	return nil
}
