// Package usecases implements package browsing, purchase, and subscription
// delivery flows.
package usecases

import (
	"context"
	"time"

	"veil/internal/domain/node"
	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*user.User, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*user.User, error)
	AdjustBalance(ctx context.Context, id uint, delta int64) error
	AdjustTrafficQuota(ctx context.Context, id uint, delta int64) error
}

type PackageRepository interface {
	FindByID(ctx context.Context, id uint) (*subscription.Package, error)
	ListActive(ctx context.Context) ([]*subscription.Package, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *subscription.Order) error
	UpdateStatus(ctx context.Context, id uint, status subscription.OrderStatus) error
	MarkCompleted(ctx context.Context, id uint, completedAt time.Time) error
	FindByID(ctx context.Context, id uint) (*subscription.Order, error)
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*subscription.Order, int64, error)
	CountCompletedByUser(ctx context.Context, userID uint) (int64, error)
}

type UserPackageRepository interface {
	Create(ctx context.Context, up *subscription.UserPackage) error
	LatestValid(ctx context.Context, userID uint, now time.Time) (*subscription.UserPackage, error)
}

type CoinTransactionRepository interface {
	Create(ctx context.Context, tx *subscription.CoinTransaction) error
}

type SubscriptionTokenRepository interface {
	Create(ctx context.Context, token *subscription.Token) error
	FindByToken(ctx context.Context, tokenStr string) (*subscription.Token, error)
	FindByUserID(ctx context.Context, userID uint) (*subscription.Token, error)
	TouchLastAccessed(ctx context.Context, id uint, at time.Time) error
}

type SubscriptionLogRepository interface {
	Create(ctx context.Context, entry *subscription.AccessLog) error
}

type NodeRepository interface {
	ListClashNodes(ctx context.Context) ([]*node.Node, error)
}

type ClashConfigRepository interface {
	ListProxyGroups(ctx context.Context) ([]*subscription.ClashProxyGroup, error)
	ListActiveRules(ctx context.Context) ([]*subscription.ClashRule, error)
}

type UserPackageCache interface {
	Invalidate(ctx context.Context, userID uint) error
}

type SubscriptionCache interface {
	Get(ctx context.Context, token string) (string, error)
	Set(ctx context.Context, token, content string) error
	Invalidate(ctx context.Context, token string) error
}

// DocumentRenderer builds the Clash YAML served to subscription clients.
type DocumentRenderer interface {
	Render(nodes []*node.Node, groups []*subscription.ClashProxyGroup, rules []*subscription.ClashRule) (string, error)
}

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CredentialGenerator interface {
	SubscriptionToken() (string, error)
}

// TaskExecutor runs best-effort work after the request completes.
type TaskExecutor interface {
	Submit(name string, fn func()) bool
}
