package http

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	adminusecases "veil/internal/application/admin/usecases"
	nodeusecases "veil/internal/application/node/usecases"
	"veil/internal/application/subscription/clash"
	subusecases "veil/internal/application/subscription/usecases"
	userusecases "veil/internal/application/user/usecases"
	"veil/internal/infrastructure/auth"
	"veil/internal/infrastructure/cache"
	"veil/internal/infrastructure/config"
	"veil/internal/infrastructure/pubsub"
	"veil/internal/infrastructure/ratelimit"
	"veil/internal/infrastructure/repository"
	"veil/internal/infrastructure/token"
	"veil/internal/interfaces/http/handlers"
	"veil/internal/interfaces/http/middleware"
	"veil/internal/shared/db"
	"veil/internal/shared/goroutine"
	"veil/internal/shared/logger"
)

// BuildRouter assembles the full dependency graph for the API server.
// The returned executor must be stopped on shutdown to drain pending
// best-effort work.
func BuildRouter(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client, log logger.Interface) (*Router, *goroutine.Executor) {
	executor := goroutine.NewExecutor(4, 256, log)

	txManager := db.NewTransactionManager(gormDB)

	userRepo := repository.NewUserRepository(gormDB, log)
	packageRepo := repository.NewPackageRepository(gormDB, log)
	orderRepo := repository.NewOrderRepository(gormDB, log)
	userPackageRepo := repository.NewUserPackageRepository(gormDB, log)
	coinRepo := repository.NewCoinTransactionRepository(gormDB, log)
	nodeRepo := repository.NewNodeRepository(gormDB, log)
	tokenRepo := repository.NewSubscriptionTokenRepository(gormDB, log)
	logRepo := repository.NewSubscriptionLogRepository(gormDB, log)
	clashRepo := repository.NewClashConfigRepository(gormDB, log)

	pkgCache := cache.NewUserPackageCache(redisClient, log)
	nodeCache := cache.NewNodeCache(redisClient, log)
	subCache := cache.NewSubscriptionCache(redisClient, log)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost)
	generator := token.NewGenerator()
	eventBus := pubsub.NewRedisNodeConfigEventBus(redisClient, log)
	limiter := ratelimit.NewRedisRateLimiter(redisClient, log)
	renderer := clash.NewRenderer(log)

	authHandler := handlers.NewAuthHandler(
		userusecases.NewRegisterUseCase(userRepo, tokenRepo, hasher, generator, txManager, log),
		userusecases.NewLoginUseCase(userRepo, hasher, jwtService, log),
		userusecases.NewRefreshTokenUseCase(userRepo, jwtService, jwtService, log),
		log,
	)

	userHandler := handlers.NewUserHandler(
		userusecases.NewGetBalanceUseCase(userRepo, coinRepo),
		userusecases.NewGetTrafficUseCase(userRepo),
		userusecases.NewGetReferralUseCase(userRepo, cfg.App.FrontendURL),
		userusecases.NewGetReferralStatsUseCase(userRepo, coinRepo, log),
		log,
	)

	packageHandler := handlers.NewPackageHandler(
		subusecases.NewListPackagesUseCase(packageRepo),
		subusecases.NewPurchaseUseCase(userRepo, packageRepo, orderRepo, userPackageRepo, coinRepo, pkgCache, txManager, executor, log),
		subusecases.NewListOrdersUseCase(orderRepo),
		subusecases.NewGetOrderUseCase(orderRepo),
		log,
	)

	subscriptionHandler := handlers.NewSubscriptionHandler(
		subusecases.NewGetSubscriptionLinkUseCase(userRepo, tokenRepo, generator, cfg.App.APIBaseURL, log),
		subusecases.NewMaterializeUseCase(tokenRepo, userRepo, userPackageRepo, nodeRepo, clashRepo, logRepo, subCache, renderer, executor, log),
		log,
	)

	nodeAgentHandler := handlers.NewNodeAgentHandler(
		nodeusecases.NewGetNodeConfigUseCase(nodeRepo, userRepo, log),
		nodeusecases.NewGetNodeUsersUseCase(nodeRepo, userRepo, log),
		nodeusecases.NewHeartbeatUseCase(nodeRepo, nodeCache, log),
		log,
	)

	adminHandler := handlers.NewAdminHandler(
		adminusecases.NewListUsersUseCase(userRepo),
		adminusecases.NewGetUserUseCase(userRepo),
		adminusecases.NewUpdateUserStatusUseCase(userRepo, pkgCache, log),
		adminusecases.NewAdjustBalanceUseCase(userRepo, coinRepo, txManager, log),
		adminusecases.NewAdjustTrafficUseCase(userRepo, pkgCache, log),
		adminusecases.NewAdminListOrdersUseCase(orderRepo),
		adminusecases.NewAdminGetOrderUseCase(orderRepo),
		adminusecases.NewGetOverviewStatsUseCase(userRepo, orderRepo, nodeRepo),
		adminusecases.NewGetRevenueStatsUseCase(orderRepo),
		adminusecases.NewGetTopTrafficUseCase(userRepo),
		adminusecases.NewListAccessLogsUseCase(logRepo),
		log,
	)

	adminNodeHandler := handlers.NewAdminNodeHandler(
		nodeusecases.NewCreateNodeUseCase(nodeRepo, nodeCache, generator, eventBus, log),
		nodeusecases.NewUpdateNodeUseCase(nodeRepo, nodeCache, eventBus, log),
		nodeusecases.NewDeleteNodeUseCase(nodeRepo, nodeCache, eventBus, log),
		nodeusecases.NewListNodesUseCase(nodeRepo),
		log,
	)

	adminClashHandler := handlers.NewAdminClashHandler(
		adminusecases.NewManageClashConfigUseCase(clashRepo, log),
		subusecases.NewGenerateClashDocumentUseCase(nodeRepo, clashRepo, renderer, log),
		log,
	)

	authMW := middleware.NewAuthMiddleware(jwtService, log)

	router := NewRouter(
		authHandler,
		userHandler,
		packageHandler,
		subscriptionHandler,
		nodeAgentHandler,
		adminHandler,
		adminNodeHandler,
		adminClashHandler,
		authMW,
		limiter,
		cfg.App.CORSOriginList(),
		log,
	)
	return router, executor
}
