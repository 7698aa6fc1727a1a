package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	adminusecases "veil/internal/application/admin/usecases"
	"veil/internal/domain/user"
	"veil/internal/interfaces/http/middleware"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type AdminHandler struct {
	listUsersUC    *adminusecases.ListUsersUseCase
	getUserUC      *adminusecases.GetUserUseCase
	updateStatusUC *adminusecases.UpdateUserStatusUseCase
	adjustBalUC    *adminusecases.AdjustBalanceUseCase
	adjustTrafUC   *adminusecases.AdjustTrafficUseCase
	listOrdersUC   *adminusecases.AdminListOrdersUseCase
	getOrderUC     *adminusecases.AdminGetOrderUseCase
	overviewUC     *adminusecases.GetOverviewStatsUseCase
	revenueUC      *adminusecases.GetRevenueStatsUseCase
	topTrafficUC   *adminusecases.GetTopTrafficUseCase
	accessLogsUC   *adminusecases.ListAccessLogsUseCase
	logger         logger.Interface
}

func NewAdminHandler(
	listUsersUC *adminusecases.ListUsersUseCase,
	getUserUC *adminusecases.GetUserUseCase,
	updateStatusUC *adminusecases.UpdateUserStatusUseCase,
	adjustBalUC *adminusecases.AdjustBalanceUseCase,
	adjustTrafUC *adminusecases.AdjustTrafficUseCase,
	listOrdersUC *adminusecases.AdminListOrdersUseCase,
	getOrderUC *adminusecases.AdminGetOrderUseCase,
	overviewUC *adminusecases.GetOverviewStatsUseCase,
	revenueUC *adminusecases.GetRevenueStatsUseCase,
	topTrafficUC *adminusecases.GetTopTrafficUseCase,
	accessLogsUC *adminusecases.ListAccessLogsUseCase,
	log logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		listUsersUC:    listUsersUC,
		getUserUC:      getUserUC,
		updateStatusUC: updateStatusUC,
		adjustBalUC:    adjustBalUC,
		adjustTrafUC:   adjustTrafUC,
		listOrdersUC:   listOrdersUC,
		getOrderUC:     getOrderUC,
		overviewUC:     overviewUC,
		revenueUC:      revenueUC,
		topTrafficUC:   topTrafficUC,
		accessLogsUC:   accessLogsUC,
		logger:         log.Named("admin_handler"),
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listUsersUC.Execute(c.Request.Context(), adminusecases.ListUsersCommand{
		EmailFilter: c.Query("email"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(result.Users))
	for _, u := range result.Users {
		items = append(items, userToResponse(u))
	}
	utils.ListSuccessResponse(c, items, result.Total, page, pageSize)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.getUserUC.Execute(c.Request.Context(), uint(userID))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", userToResponse(u))
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	adminID, _ := middleware.UserIDFromContext(c)
	err = h.updateStatusUC.Execute(c.Request.Context(), adminusecases.UpdateUserStatusCommand{
		UserID:      uint(userID),
		Status:      req.Status,
		AdminUserID: adminID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "user status updated", nil)
}

type AdjustBalanceRequest struct {
	Delta       int64  `json:"delta" binding:"required"`
	Description string `json:"description"`
}

func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	adminID, _ := middleware.UserIDFromContext(c)
	err = h.adjustBalUC.Execute(c.Request.Context(), adminusecases.AdjustBalanceCommand{
		UserID:      uint(userID),
		Delta:       req.Delta,
		Description: req.Description,
		AdminUserID: adminID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "balance adjusted", nil)
}

type AdjustTrafficRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

func (h *AdminHandler) AdjustTraffic(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req AdjustTrafficRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	adminID, _ := middleware.UserIDFromContext(c)
	err = h.adjustTrafUC.Execute(c.Request.Context(), adminusecases.AdjustTrafficCommand{
		UserID:      uint(userID),
		Delta:       req.Delta,
		AdminUserID: adminID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "traffic quota adjusted", nil)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listOrdersUC.Execute(c.Request.Context(), adminusecases.AdminListOrdersCommand{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, ordersToResponse(result.Orders), result.Total, page, pageSize)
}

func (h *AdminHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.getOrderUC.Execute(c.Request.Context(), uint(orderID))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", orderToResponse(order))
}

func (h *AdminHandler) GetOverviewStats(c *gin.Context) {
	stats, err := h.overviewUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"total_users":         stats.TotalUsers,
		"active_users":        stats.ActiveUsers,
		"total_nodes":         stats.TotalNodes,
		"online_nodes":        stats.OnlineNodes,
		"total_orders":        stats.TotalOrders,
		"total_revenue":       stats.TotalRevenue,
		"total_traffic_quota": stats.TotalTrafficQuota,
		"total_traffic_used":  stats.TotalTrafficUsed,
	})
}

func (h *AdminHandler) GetRevenueStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	revenue, err := h.revenueUC.Execute(c.Request.Context(), adminusecases.GetRevenueStatsCommand{Days: days})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", revenue)
}

func (h *AdminHandler) GetTopTraffic(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	users, err := h.topTrafficUC.Execute(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, gin.H{
			"user_id":      u.ID,
			"email":        u.Email,
			"traffic_used": u.TrafficUsed,
		})
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

func (h *AdminHandler) ListAccessLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 32)

	result, err := h.accessLogsUC.Execute(c.Request.Context(), adminusecases.ListAccessLogsCommand{
		UserID:   uint(userID),
		Result:   c.Query("result"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(result.Logs))
	for _, entry := range result.Logs {
		items = append(items, gin.H{
			"id":         entry.ID,
			"user_id":    entry.UserID,
			"client_ip":  entry.ClientIP,
			"user_agent": entry.UserAgent,
			"result":     string(entry.Result),
			"created_at": entry.CreatedAt,
		})
	}
	utils.ListSuccessResponse(c, items, result.Total, page, pageSize)
}

func userToResponse(u *user.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"email":         u.Email,
		"balance":       u.Balance,
		"traffic_quota": u.TrafficQuota,
		"traffic_used":  u.TrafficUsed,
		"status":        string(u.Status),
		"is_admin":      u.IsAdmin,
		"referral_code": u.ReferralCode,
		"referred_by":   u.ReferredBy,
		"created_at":    u.CreatedAt,
	}
}
