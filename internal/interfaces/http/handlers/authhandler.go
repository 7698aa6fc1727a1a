// Package handlers implements the Gin HTTP handlers.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userusecases "veil/internal/application/user/usecases"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type AuthHandler struct {
	registerUC *userusecases.RegisterUseCase
	loginUC    *userusecases.LoginUseCase
	refreshUC  *userusecases.RefreshTokenUseCase
	logger     logger.Interface
}

func NewAuthHandler(
	registerUC *userusecases.RegisterUseCase,
	loginUC *userusecases.LoginUseCase,
	refreshUC *userusecases.RefreshTokenUseCase,
	log logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		refreshUC:  refreshUC,
		logger:     log.Named("auth_handler"),
	}
}

type RegisterRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	ReferralCode string `json:"referral_code"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	result, err := h.registerUC.Execute(c.Request.Context(), userusecases.RegisterCommand{
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"user_id":       result.UserID,
		"email":         result.Email,
		"referral_code": result.ReferralCode,
	}, "registration successful")
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	result, err := h.loginUC.Execute(c.Request.Context(), userusecases.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "login successful", gin.H{
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
		"user_id":    result.UserID,
		"email":      result.Email,
		"is_admin":   result.IsAdmin,
	})
}

type RefreshTokenRequest struct {
	Token string `json:"token"`
}

// RefreshToken exchanges a token carried in the request body for a fresh
// one. A bearer header works too for clients that already send one.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
			return
		}
	}
	if req.Token == "" {
		req.Token = bearerToken(c)
	}

	result, err := h.refreshUC.Execute(c.Request.Context(), userusecases.RefreshTokenCommand{Token: req.Token})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "token refreshed", gin.H{
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
	})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
