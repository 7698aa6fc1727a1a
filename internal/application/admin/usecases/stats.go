package usecases

import (
	"context"
	"time"

	"veil/internal/domain/node"
	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
	"veil/internal/infrastructure/repository"
)

type OverviewStats struct {
	TotalUsers        int64
	ActiveUsers       int64
	TotalNodes        int64
	OnlineNodes       int64
	TotalOrders       int64
	TotalRevenue      int64
	TotalTrafficQuota int64
	TotalTrafficUsed  int64
}

// GetOverviewStatsUseCase assembles the admin dashboard headline numbers.
type GetOverviewStatsUseCase struct {
	userRepo  UserRepository
	orderRepo OrderRepository
	nodeRepo  NodeRepository
}

func NewGetOverviewStatsUseCase(userRepo UserRepository, orderRepo OrderRepository, nodeRepo NodeRepository) *GetOverviewStatsUseCase {
	return &GetOverviewStatsUseCase{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		nodeRepo:  nodeRepo,
	}
}

func (uc *GetOverviewStatsUseCase) Execute(ctx context.Context) (*OverviewStats, error) {
	stats := &OverviewStats{}
	var err error

	if stats.TotalUsers, err = uc.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = uc.userRepo.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.TotalNodes, err = uc.nodeRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.OnlineNodes, err = uc.nodeRepo.CountByStatus(ctx, node.StatusOnline); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = uc.orderRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = uc.orderRepo.TotalRevenue(ctx); err != nil {
		return nil, err
	}
	if stats.TotalTrafficQuota, stats.TotalTrafficUsed, err = uc.userRepo.TrafficTotals(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

type GetRevenueStatsCommand struct {
	Days int
}

type GetRevenueStatsUseCase struct {
	orderRepo OrderRepository
}

func NewGetRevenueStatsUseCase(orderRepo OrderRepository) *GetRevenueStatsUseCase {
	return &GetRevenueStatsUseCase{orderRepo: orderRepo}
}

func (uc *GetRevenueStatsUseCase) Execute(ctx context.Context, cmd GetRevenueStatsCommand) ([]repository.DailyRevenue, error) {
	days := cmd.Days
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return uc.orderRepo.RevenueByDay(ctx, since)
}

type GetTopTrafficUseCase struct {
	userRepo UserRepository
}

func NewGetTopTrafficUseCase(userRepo UserRepository) *GetTopTrafficUseCase {
	return &GetTopTrafficUseCase{userRepo: userRepo}
}

func (uc *GetTopTrafficUseCase) Execute(ctx context.Context, limit int) ([]*user.User, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return uc.userRepo.TopTrafficConsumers(ctx, limit)
}

type AdminListOrdersCommand struct {
	Status   string
	Page     int
	PageSize int
}

type AdminListOrdersResult struct {
	Orders []*subscription.Order
	Total  int64
}

type AdminListOrdersUseCase struct {
	orderRepo OrderRepository
}

func NewAdminListOrdersUseCase(orderRepo OrderRepository) *AdminListOrdersUseCase {
	return &AdminListOrdersUseCase{orderRepo: orderRepo}
}

func (uc *AdminListOrdersUseCase) Execute(ctx context.Context, cmd AdminListOrdersCommand) (*AdminListOrdersResult, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 20
	}

	orders, total, err := uc.orderRepo.List(ctx, cmd.Status, cmd.Page, cmd.PageSize)
	if err != nil {
		return nil, err
	}
	return &AdminListOrdersResult{Orders: orders, Total: total}, nil
}

type AdminGetOrderUseCase struct {
	orderRepo OrderRepository
}

func NewAdminGetOrderUseCase(orderRepo OrderRepository) *AdminGetOrderUseCase {
	return &AdminGetOrderUseCase{orderRepo: orderRepo}
}

func (uc *AdminGetOrderUseCase) Execute(ctx context.Context, orderID uint) (*subscription.Order, error) {
	return uc.orderRepo.FindByID(ctx, orderID)
}

type ListAccessLogsCommand struct {
	UserID   uint
	Result   string
	Page     int
	PageSize int
}

type ListAccessLogsResult struct {
	Logs  []*subscription.AccessLog
	Total int64
}

type ListAccessLogsUseCase struct {
	logRepo SubscriptionLogRepository
}

func NewListAccessLogsUseCase(logRepo SubscriptionLogRepository) *ListAccessLogsUseCase {
	return &ListAccessLogsUseCase{logRepo: logRepo}
}

func (uc *ListAccessLogsUseCase) Execute(ctx context.Context, cmd ListAccessLogsCommand) (*ListAccessLogsResult, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 50
	}

	logs, total, err := uc.logRepo.List(ctx, cmd.UserID, cmd.Result, cmd.Page, cmd.PageSize)
	if err != nil {
		return nil, err
	}
	return &ListAccessLogsResult{Logs: logs, Total: total}, nil
}
