// Package http wires the Gin engine, middleware, and route table.
package http

import (
	"github.com/gin-gonic/gin"

	"veil/internal/infrastructure/ratelimit"
	"veil/internal/interfaces/http/handlers"
	"veil/internal/interfaces/http/middleware"
	"veil/internal/shared/logger"
)

type Router struct {
	engine *gin.Engine

	authHandler         *handlers.AuthHandler
	userHandler         *handlers.UserHandler
	packageHandler      *handlers.PackageHandler
	subscriptionHandler *handlers.SubscriptionHandler
	nodeAgentHandler    *handlers.NodeAgentHandler
	adminHandler        *handlers.AdminHandler
	adminNodeHandler    *handlers.AdminNodeHandler
	adminClashHandler   *handlers.AdminClashHandler

	authMiddleware *middleware.AuthMiddleware
	rateLimiter    ratelimit.RateLimiter
	corsOrigins    []string
	logger         logger.Interface
}

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	packageHandler *handlers.PackageHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	nodeAgentHandler *handlers.NodeAgentHandler,
	adminHandler *handlers.AdminHandler,
	adminNodeHandler *handlers.AdminNodeHandler,
	adminClashHandler *handlers.AdminClashHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter ratelimit.RateLimiter,
	corsOrigins []string,
	log logger.Interface,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		packageHandler:      packageHandler,
		subscriptionHandler: subscriptionHandler,
		nodeAgentHandler:    nodeAgentHandler,
		adminHandler:        adminHandler,
		adminNodeHandler:    adminNodeHandler,
		adminClashHandler:   adminClashHandler,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		corsOrigins:         corsOrigins,
		logger:              log,
	}
}

// Setup builds the engine with the full route table.
func (r *Router) Setup() *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(r.logger))
	engine.Use(middleware.Recovery(r.logger))
	engine.Use(middleware.CORS(r.corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Subscription delivery is public and keyed by the token itself.
	engine.GET("/sub/:token", middleware.RateLimit(r.rateLimiter), r.subscriptionHandler.Materialize)

	api := engine.Group("/api")

	// Unauthenticated groups rate-limit by client IP. Authenticated groups
	// install the limiter after RequireAuth so the per-user key applies.
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(r.rateLimiter))
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.RefreshToken)
	}

	api.GET("/packages", middleware.RateLimit(r.rateLimiter), r.packageHandler.ListPackages)

	// Node agents authenticate with node credentials, not JWTs.
	nodeAPI := api.Group("/node")
	nodeAPI.Use(middleware.RateLimit(r.rateLimiter))
	{
		nodeAPI.GET("/config", r.nodeAgentHandler.GetConfig)
		nodeAPI.GET("/users", r.nodeAgentHandler.GetUsers)
		nodeAPI.POST("/heartbeat", r.nodeAgentHandler.Heartbeat)
	}

	authed := api.Group("")
	authed.Use(r.authMiddleware.RequireAuth(), middleware.RateLimit(r.rateLimiter))
	{
		userAPI := authed.Group("/user")
		{
			userAPI.GET("/balance", r.userHandler.GetBalance)
			userAPI.GET("/traffic", r.userHandler.GetTraffic)
			userAPI.GET("/referral", r.userHandler.GetReferral)
			userAPI.GET("/referral/stats", r.userHandler.GetReferralStats)
		}

		authed.POST("/packages/:id/purchase", r.packageHandler.Purchase)
		authed.GET("/orders", r.packageHandler.ListOrders)
		authed.GET("/orders/:id", r.packageHandler.GetOrder)
		authed.GET("/subscription/link", r.subscriptionHandler.GetLink)
	}

	admin := api.Group("/admin")
	admin.Use(r.authMiddleware.RequireAuth(), r.authMiddleware.RequireAdmin(), middleware.RateLimit(r.rateLimiter))
	{
		admin.GET("/users", r.adminHandler.ListUsers)
		admin.GET("/users/:id", r.adminHandler.GetUser)
		admin.PUT("/users/:id/status", r.adminHandler.UpdateUserStatus)
		admin.POST("/users/:id/balance", r.adminHandler.AdjustBalance)
		admin.POST("/users/:id/traffic", r.adminHandler.AdjustTraffic)

		admin.GET("/orders", r.adminHandler.ListOrders)
		admin.GET("/orders/:id", r.adminHandler.GetOrder)

		admin.GET("/nodes", r.adminNodeHandler.List)
		admin.POST("/nodes", r.adminNodeHandler.Create)
		admin.PUT("/nodes/:id", r.adminNodeHandler.Update)
		admin.DELETE("/nodes/:id", r.adminNodeHandler.Delete)

		admin.GET("/stats/overview", r.adminHandler.GetOverviewStats)
		admin.GET("/stats/revenue", r.adminHandler.GetRevenueStats)
		admin.GET("/stats/traffic", r.adminHandler.GetTopTraffic)

		admin.GET("/clash/proxy-groups", r.adminClashHandler.ListProxyGroups)
		admin.POST("/clash/proxy-groups", r.adminClashHandler.CreateProxyGroup)
		admin.PUT("/clash/proxy-groups/:id", r.adminClashHandler.UpdateProxyGroup)
		admin.DELETE("/clash/proxy-groups/:id", r.adminClashHandler.DeleteProxyGroup)

		admin.GET("/clash/generate", r.adminClashHandler.Generate)

		admin.GET("/clash/rules", r.adminClashHandler.ListRules)
		admin.POST("/clash/rules", r.adminClashHandler.CreateRule)
		admin.PUT("/clash/rules/:id", r.adminClashHandler.UpdateRule)
		admin.DELETE("/clash/rules/:id", r.adminClashHandler.DeleteRule)

		admin.GET("/access-logs", r.adminHandler.ListAccessLogs)
	}

	r.engine = engine
	return engine
}
