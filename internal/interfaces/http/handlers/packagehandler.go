package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	subusecases "veil/internal/application/subscription/usecases"
	"veil/internal/domain/subscription"
	"veil/internal/interfaces/http/middleware"
	"veil/internal/shared/constants"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type PackageHandler struct {
	listPackagesUC *subusecases.ListPackagesUseCase
	purchaseUC     *subusecases.PurchaseUseCase
	listOrdersUC   *subusecases.ListOrdersUseCase
	getOrderUC     *subusecases.GetOrderUseCase
	logger         logger.Interface
}

func NewPackageHandler(
	listPackagesUC *subusecases.ListPackagesUseCase,
	purchaseUC *subusecases.PurchaseUseCase,
	listOrdersUC *subusecases.ListOrdersUseCase,
	getOrderUC *subusecases.GetOrderUseCase,
	log logger.Interface,
) *PackageHandler {
	return &PackageHandler{
		listPackagesUC: listPackagesUC,
		purchaseUC:     purchaseUC,
		listOrdersUC:   listOrdersUC,
		getOrderUC:     getOrderUC,
		logger:         log.Named("package_handler"),
	}
}

func (h *PackageHandler) ListPackages(c *gin.Context) {
	packages, err := h.listPackagesUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(packages))
	for _, p := range packages {
		items = append(items, gin.H{
			"id":             p.ID,
			"name":           p.Name,
			"description":    p.Description,
			"price":          p.Price,
			"duration_days":  p.DurationDays,
			"traffic_amount": p.TrafficAmount,
			"sort_order":     p.SortOrder,
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", items)
}

func (h *PackageHandler) Purchase(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	packageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid package id")
		return
	}

	result, err := h.purchaseUC.Execute(c.Request.Context(), subusecases.PurchaseCommand{
		UserID:    userID,
		PackageID: uint(packageID),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "purchase completed", gin.H{
		"order_id":   result.OrderID,
		"order_no":   result.OrderNo,
		"amount":     result.Amount,
		"expires_at": result.ExpiresAt,
	})
}

func (h *PackageHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listOrdersUC.Execute(c.Request.Context(), subusecases.ListOrdersCommand{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, ordersToResponse(result.Orders), result.Total, page, pageSize)
}

func (h *PackageHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.getOrderUC.Execute(c.Request.Context(), subusecases.GetOrderCommand{
		OrderID: uint(orderID),
		UserID:  userID,
		IsAdmin: c.GetBool(constants.ContextKeyIsAdmin),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", orderToResponse(order))
}

func orderToResponse(o *subscription.Order) gin.H {
	return gin.H{
		"id":         o.ID,
		"order_no":   o.OrderNo,
		"user_id":    o.UserID,
		"package_id": o.PackageID,
		"amount":     o.Amount,
		"status":     string(o.Status),
		"created_at": o.CreatedAt,
	}
}

func ordersToResponse(orders []*subscription.Order) []gin.H {
	items := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		items = append(items, orderToResponse(o))
	}
	return items
}
