// Package constants defines shared constant values used across layers.
package constants

// Database table names
const (
	TableUsers              = "users"
	TablePackages           = "packages"
	TableOrders             = "orders"
	TableUserPackages       = "user_packages"
	TableCoinTransactions   = "coin_transactions"
	TableNodes              = "nodes"
	TableTrafficLogs        = "traffic_logs"
	TableSubscriptionTokens = "subscription_tokens"
	TableSubscriptionLogs   = "subscription_logs"
	TableClashProxyGroups   = "clash_proxy_groups"
	TableClashRules         = "clash_rules"
)

// Gin context keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyIsAdmin = "is_admin"
)

// Cache keys and TTLs
const (
	CacheKeyActiveNodes      = "nodes:active"
	CacheKeyUserPackagePfx   = "user:package:"
	CacheKeySubscriptionPfx  = "subscription:"
	CacheKeyRateLimitUserPfx = "rate_limit:user:"
	CacheKeyRateLimitAnonPfx = "rate_limit:anonymous:"
)

// Traffic stream settings
const (
	TrafficStreamKey   = "traffic_stream"
	TrafficStreamGroup = "traffic_processor"
)

// Node config pub/sub channels
const (
	NodeConfigChannel    = "node:config:update"
	NodeConfigChannelPfx = "node:config:update:"
)
