package usecases

import (
	"context"

	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type LoginCommand struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresIn int64
	UserID    uint
	Email     string
	IsAdmin   bool
}

type LoginUseCase struct {
	userRepo UserRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
	logger   logger.Interface
}

func NewLoginUseCase(userRepo UserRepository, hasher PasswordHasher, issuer TokenIssuer, log logger.Interface) *LoginUseCase {
	return &LoginUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		logger:   log.Named("login_usecase"),
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	u, err := uc.userRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		// Identical response for unknown email and wrong password.
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	if err := uc.hasher.Verify(cmd.Password, u.PasswordHash); err != nil {
		uc.logger.Warnw("failed login attempt", "user_id", u.ID)
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	if u.IsDisabled() {
		return nil, errors.NewForbiddenError("account is disabled")
	}

	token, expiresIn, err := uc.issuer.Generate(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		uc.logger.Errorw("failed to issue token", "user_id", u.ID, "error", err)
		return nil, errors.NewInternalError("failed to issue token")
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: expiresIn,
		UserID:    u.ID,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
	}, nil
}
