package usecases

import (
	"context"

	"veil/internal/domain/subscription"
	"veil/internal/shared/errors"
)

type ListOrdersCommand struct {
	UserID   uint
	Page     int
	PageSize int
}

type ListOrdersResult struct {
	Orders []*subscription.Order
	Total  int64
}

type ListOrdersUseCase struct {
	orderRepo OrderRepository
}

func NewListOrdersUseCase(orderRepo OrderRepository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

func (uc *ListOrdersUseCase) Execute(ctx context.Context, cmd ListOrdersCommand) (*ListOrdersResult, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 20
	}

	orders, total, err := uc.orderRepo.ListByUser(ctx, cmd.UserID, cmd.Page, cmd.PageSize)
	if err != nil {
		return nil, err
	}
	return &ListOrdersResult{Orders: orders, Total: total}, nil
}

type GetOrderCommand struct {
	OrderID uint
	UserID  uint
	IsAdmin bool
}

// GetOrderUseCase returns a single order. Non-admin callers only see their
// own orders; foreign orders read as not found.
type GetOrderUseCase struct {
	orderRepo OrderRepository
}

func NewGetOrderUseCase(orderRepo OrderRepository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, cmd GetOrderCommand) (*subscription.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !cmd.IsAdmin && order.UserID != cmd.UserID {
		return nil, errors.NewNotFoundError("order not found")
	}
	return order, nil
}
