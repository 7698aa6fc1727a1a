package usecases

import (
	"context"
	"fmt"

	"veil/internal/domain/subscription"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type GetSubscriptionLinkResult struct {
	Token string
	URL   string
}

// GetSubscriptionLinkUseCase returns the user's subscription URL, creating
// the token on first request if registration predates token issuance.
type GetSubscriptionLinkUseCase struct {
	userRepo   UserRepository
	tokenRepo  SubscriptionTokenRepository
	generator  CredentialGenerator
	apiBaseURL string
	logger     logger.Interface
}

func NewGetSubscriptionLinkUseCase(
	userRepo UserRepository,
	tokenRepo SubscriptionTokenRepository,
	generator CredentialGenerator,
	apiBaseURL string,
	log logger.Interface,
) *GetSubscriptionLinkUseCase {
	return &GetSubscriptionLinkUseCase{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		generator:  generator,
		apiBaseURL: apiBaseURL,
		logger:     log.Named("subscription_link_usecase"),
	}
}

func (uc *GetSubscriptionLinkUseCase) Execute(ctx context.Context, userID uint) (*GetSubscriptionLinkResult, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsDisabled() {
		return nil, errors.NewForbiddenError("account is disabled")
	}

	token, err := uc.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.IsNotFoundError(err) {
			return nil, err
		}

		value, genErr := uc.generator.SubscriptionToken()
		if genErr != nil {
			return nil, errors.NewInternalError("failed to generate subscription token")
		}
		token = &subscription.Token{UserID: userID, Token: value}
		if err := uc.tokenRepo.Create(ctx, token); err != nil {
			return nil, err
		}
		uc.logger.Infow("subscription token issued", "user_id", userID)
	}

	return &GetSubscriptionLinkResult{
		Token: token.Token,
		URL:   fmt.Sprintf("%s/sub/%s", uc.apiBaseURL, token.Token),
	}, nil
}
