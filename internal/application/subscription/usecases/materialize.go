package usecases

import (
	"context"
	"time"

	"veil/internal/application/subscription/clash"
	"veil/internal/domain/subscription"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type MaterializeCommand struct {
	Token     string
	ClientIP  string
	UserAgent string
}

type MaterializeResult struct {
	Content string
}

// MaterializeUseCase resolves a subscription token into the Clash document
// served to the client. Users without a usable entitlement receive the
// empty document rather than an error so their client keeps polling.
// Access logging and cache writes are best effort and never fail a fetch.
type MaterializeUseCase struct {
	tokenRepo SubscriptionTokenRepository
	userRepo  UserRepository
	upRepo    UserPackageRepository
	nodeRepo  NodeRepository
	clashRepo ClashConfigRepository
	logRepo   SubscriptionLogRepository
	subCache  SubscriptionCache
	renderer  DocumentRenderer
	executor  TaskExecutor
	logger    logger.Interface
}

func NewMaterializeUseCase(
	tokenRepo SubscriptionTokenRepository,
	userRepo UserRepository,
	upRepo UserPackageRepository,
	nodeRepo NodeRepository,
	clashRepo ClashConfigRepository,
	logRepo SubscriptionLogRepository,
	subCache SubscriptionCache,
	renderer DocumentRenderer,
	executor TaskExecutor,
	log logger.Interface,
) *MaterializeUseCase {
	return &MaterializeUseCase{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		upRepo:    upRepo,
		nodeRepo:  nodeRepo,
		clashRepo: clashRepo,
		logRepo:   logRepo,
		subCache:  subCache,
		renderer:  renderer,
		executor:  executor,
		logger:    log.Named("materialize_usecase"),
	}
}

func (uc *MaterializeUseCase) Execute(ctx context.Context, cmd MaterializeCommand) (*MaterializeResult, error) {
	// Malformed tokens read the same as unknown ones.
	if err := utils.ValidateSubscriptionToken(cmd.Token); err != nil {
		return nil, errors.NewNotFoundError("subscription not found")
	}

	if content, err := uc.subCache.Get(ctx, cmd.Token); err == nil && content != "" {
		uc.logger.Debugw("subscription cache hit", "client_ip", cmd.ClientIP)
		if token, err := uc.tokenRepo.FindByToken(ctx, cmd.Token); err == nil {
			uc.logAccess(token.UserID, cmd, subscription.AccessSuccess)
		}
		return &MaterializeResult{Content: content}, nil
	}

	token, err := uc.tokenRepo.FindByToken(ctx, cmd.Token)
	if err != nil {
		// No user to attribute the attempt to, so nothing is logged.
		return nil, errors.NewNotFoundError("subscription not found")
	}

	u, err := uc.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		uc.logAccess(token.UserID, cmd, subscription.AccessFailed)
		return nil, err
	}

	if u.IsDisabled() {
		uc.logAccess(u.ID, cmd, subscription.AccessDisabled)
		return nil, errors.NewUnauthorizedError("account is disabled")
	}

	if !u.HasTraffic() {
		uc.logger.Warnw("traffic quota exceeded", "user_id", u.ID)
		uc.logAccess(u.ID, cmd, subscription.AccessQuotaExceeded)
		return &MaterializeResult{Content: clash.EmptyDocument}, nil
	}

	now := time.Now()
	entitlement, err := uc.upRepo.LatestValid(ctx, u.ID, now)
	if err != nil {
		uc.logAccess(u.ID, cmd, subscription.AccessFailed)
		return nil, err
	}
	if entitlement == nil {
		uc.logAccess(u.ID, cmd, subscription.AccessExpired)
		return &MaterializeResult{Content: clash.EmptyDocument}, nil
	}

	content, err := uc.render(ctx)
	if err != nil {
		uc.logAccess(u.ID, cmd, subscription.AccessFailed)
		return nil, err
	}

	if err := uc.subCache.Set(ctx, cmd.Token, content); err != nil {
		uc.logger.Warnw("failed to cache subscription document", "error", err)
	}

	tokenID := token.ID
	uc.executor.Submit("subscription_touch", func() {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.tokenRepo.TouchLastAccessed(bg, tokenID, now); err != nil {
			uc.logger.Warnw("failed to update last accessed", "error", err)
		}
	})
	uc.logAccess(u.ID, cmd, subscription.AccessSuccess)

	return &MaterializeResult{Content: content}, nil
}

func (uc *MaterializeUseCase) render(ctx context.Context) (string, error) {
	nodes, err := uc.nodeRepo.ListClashNodes(ctx)
	if err != nil {
		return "", err
	}
	groups, err := uc.clashRepo.ListProxyGroups(ctx)
	if err != nil {
		return "", err
	}
	rules, err := uc.clashRepo.ListActiveRules(ctx)
	if err != nil {
		return "", err
	}
	return uc.renderer.Render(nodes, groups, rules)
}

func (uc *MaterializeUseCase) logAccess(userID uint, cmd MaterializeCommand, result subscription.AccessResult) {
	uc.executor.Submit("subscription_access_log", func() {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := uc.logRepo.Create(bg, &subscription.AccessLog{
			UserID:    userID,
			Token:     cmd.Token,
			ClientIP:  cmd.ClientIP,
			UserAgent: cmd.UserAgent,
			Result:    result,
		})
		if err != nil {
			uc.logger.Warnw("failed to record access log", "user_id", userID, "error", err)
		}
	})
}
