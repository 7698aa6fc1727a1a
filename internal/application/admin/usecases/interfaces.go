// Package usecases implements the admin console operations.
package usecases

import (
	"context"
	"time"

	"veil/internal/domain/node"
	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
	"veil/internal/infrastructure/repository"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*user.User, error)
	List(ctx context.Context, emailFilter string, page, pageSize int) ([]*user.User, int64, error)
	UpdateStatus(ctx context.Context, id uint, status user.Status) error
	AdjustBalance(ctx context.Context, id uint, delta int64) error
	AdjustTrafficQuota(ctx context.Context, id uint, delta int64) error
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	TopTrafficConsumers(ctx context.Context, limit int) ([]*user.User, error)
	TrafficTotals(ctx context.Context) (quota int64, used int64, err error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*subscription.Order, error)
	List(ctx context.Context, status string, page, pageSize int) ([]*subscription.Order, int64, error)
	Count(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (int64, error)
	RevenueByDay(ctx context.Context, since time.Time) ([]repository.DailyRevenue, error)
}

type NodeRepository interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status node.Status) (int64, error)
}

type CoinTransactionRepository interface {
	Create(ctx context.Context, tx *subscription.CoinTransaction) error
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*subscription.CoinTransaction, int64, error)
}

type SubscriptionLogRepository interface {
	List(ctx context.Context, userID uint, result string, page, pageSize int) ([]*subscription.AccessLog, int64, error)
}

type ClashConfigRepository interface {
	CreateProxyGroup(ctx context.Context, g *subscription.ClashProxyGroup) error
	UpdateProxyGroup(ctx context.Context, g *subscription.ClashProxyGroup) error
	DeleteProxyGroup(ctx context.Context, id uint) error
	FindProxyGroupByID(ctx context.Context, id uint) (*subscription.ClashProxyGroup, error)
	ListProxyGroups(ctx context.Context) ([]*subscription.ClashProxyGroup, error)
	CreateRule(ctx context.Context, rule *subscription.ClashRule) error
	UpdateRule(ctx context.Context, rule *subscription.ClashRule) error
	DeleteRule(ctx context.Context, id uint) error
	ListRules(ctx context.Context) ([]*subscription.ClashRule, error)
}

type UserPackageCache interface {
	Invalidate(ctx context.Context, userID uint) error
}

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
