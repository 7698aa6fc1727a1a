package usecases

import (
	"context"

	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type RegisterCommand struct {
	Email        string
	Password     string
	ReferralCode string
}

type RegisterResult struct {
	UserID       uint
	Email        string
	ReferralCode string
}

// RegisterUseCase creates an account, resolves the referring user, and
// issues the subscription token in one transaction.
type RegisterUseCase struct {
	userRepo  UserRepository
	tokenRepo SubscriptionTokenRepository
	hasher    PasswordHasher
	generator CredentialGenerator
	txRunner  TransactionRunner
	logger    logger.Interface
}

func NewRegisterUseCase(
	userRepo UserRepository,
	tokenRepo SubscriptionTokenRepository,
	hasher PasswordHasher,
	generator CredentialGenerator,
	txRunner TransactionRunner,
	log logger.Interface,
) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		hasher:    hasher,
		generator: generator,
		txRunner:  txRunner,
		logger:    log.Named("register_usecase"),
	}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (*RegisterResult, error) {
	if err := utils.ValidateEmail(cmd.Email); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(cmd.Password); err != nil {
		return nil, err
	}

	var referredBy *uint
	if cmd.ReferralCode != "" {
		if err := utils.ValidateReferralCode(cmd.ReferralCode); err != nil {
			return nil, err
		}
		referrer, err := uc.userRepo.FindByReferralCode(ctx, cmd.ReferralCode)
		if err != nil {
			if errors.IsNotFoundError(err) {
				return nil, errors.NewValidationError("referral code not found")
			}
			return nil, err
		}
		referredBy = &referrer.ID
	}

	passwordHash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		uc.logger.Errorw("failed to hash password", "error", err)
		return nil, errors.NewInternalError("failed to process registration")
	}

	referralCode, err := uc.generator.ReferralCode()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate referral code")
	}

	newUser, err := user.NewUser(cmd.Email, passwordHash, referralCode, referredBy)
	if err != nil {
		return nil, err
	}

	subToken, err := uc.generator.SubscriptionToken()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate subscription token")
	}

	err = uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.userRepo.Create(txCtx, newUser); err != nil {
			return err
		}
		return uc.tokenRepo.Create(txCtx, &subscription.Token{
			UserID: newUser.ID,
			Token:  subToken,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("user registered",
		"user_id", newUser.ID,
		"referred", referredBy != nil,
	)

	return &RegisterResult{
		UserID:       newUser.ID,
		Email:        newUser.Email,
		ReferralCode: newUser.ReferralCode,
	}, nil
}
