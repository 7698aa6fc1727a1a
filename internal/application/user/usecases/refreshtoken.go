package usecases

import (
	"context"

	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type RefreshTokenCommand struct {
	Token string
}

type RefreshTokenResult struct {
	Token     string
	ExpiresIn int64
}

// RefreshTokenUseCase exchanges a still-valid token for a fresh one,
// re-checking account state first. The presented token authenticates the
// request by itself, so the route needs no middleware.
type RefreshTokenUseCase struct {
	userRepo UserRepository
	verifier TokenVerifier
	issuer   TokenIssuer
	logger   logger.Interface
}

func NewRefreshTokenUseCase(userRepo UserRepository, verifier TokenVerifier, issuer TokenIssuer, log logger.Interface) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{
		userRepo: userRepo,
		verifier: verifier,
		issuer:   issuer,
		logger:   log.Named("refresh_token_usecase"),
	}
}

func (uc *RefreshTokenUseCase) Execute(ctx context.Context, cmd RefreshTokenCommand) (*RefreshTokenResult, error) {
	if cmd.Token == "" {
		return nil, errors.NewUnauthorizedError("missing authorization token")
	}

	userID, err := uc.verifier.VerifyUserID(cmd.Token)
	if err != nil {
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}

	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.NewUnauthorizedError("account no longer exists")
	}

	if u.IsDisabled() {
		return nil, errors.NewForbiddenError("account is disabled")
	}

	token, expiresIn, err := uc.issuer.Generate(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		uc.logger.Errorw("failed to refresh token", "user_id", u.ID, "error", err)
		return nil, errors.NewInternalError("failed to issue token")
	}

	return &RefreshTokenResult{Token: token, ExpiresIn: expiresIn}, nil
}
