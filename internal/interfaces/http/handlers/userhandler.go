package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userusecases "veil/internal/application/user/usecases"
	"veil/internal/interfaces/http/middleware"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type UserHandler struct {
	balanceUC       *userusecases.GetBalanceUseCase
	trafficUC       *userusecases.GetTrafficUseCase
	referralUC      *userusecases.GetReferralUseCase
	referralStatsUC *userusecases.GetReferralStatsUseCase
	logger          logger.Interface
}

func NewUserHandler(
	balanceUC *userusecases.GetBalanceUseCase,
	trafficUC *userusecases.GetTrafficUseCase,
	referralUC *userusecases.GetReferralUseCase,
	referralStatsUC *userusecases.GetReferralStatsUseCase,
	log logger.Interface,
) *UserHandler {
	return &UserHandler{
		balanceUC:       balanceUC,
		trafficUC:       trafficUC,
		referralUC:      referralUC,
		referralStatsUC: referralStatsUC,
		logger:          log.Named("user_handler"),
	}
}

func (h *UserHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	result, err := h.balanceUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	recent := make([]gin.H, 0, len(result.RecentTransactions))
	for _, tx := range result.RecentTransactions {
		recent = append(recent, gin.H{
			"id":          tx.ID,
			"amount":      tx.Amount,
			"type":        string(tx.Type),
			"description": tx.Description,
			"created_at":  tx.CreatedAt,
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"coin_balance":        result.Balance,
		"recent_transactions": recent,
	})
}

func (h *UserHandler) GetTraffic(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	result, err := h.trafficUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"traffic_quota": result.TrafficQuota,
		"traffic_used":  result.TrafficUsed,
		"remaining":     result.Remaining,
	})
}

func (h *UserHandler) GetReferral(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	result, err := h.referralUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"referral_code": result.ReferralCode,
		"referral_link": result.ReferralLink,
	})
}

func (h *UserHandler) GetReferralStats(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	result, err := h.referralStatsUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"total_referred": result.TotalReferred,
		"total_rebate":   result.TotalRebate,
	})
}
