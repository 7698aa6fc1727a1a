package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subusecases "veil/internal/application/subscription/usecases"
	"veil/internal/interfaces/http/middleware"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

const yamlContentType = "text/yaml; charset=utf-8"

type SubscriptionHandler struct {
	linkUC        *subusecases.GetSubscriptionLinkUseCase
	materializeUC *subusecases.MaterializeUseCase
	logger        logger.Interface
}

func NewSubscriptionHandler(
	linkUC *subusecases.GetSubscriptionLinkUseCase,
	materializeUC *subusecases.MaterializeUseCase,
	log logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		linkUC:        linkUC,
		materializeUC: materializeUC,
		logger:        log.Named("subscription_handler"),
	}
}

func (h *SubscriptionHandler) GetLink(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	result, err := h.linkUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"token": result.Token,
		"url":   result.URL,
	})
}

// Materialize serves the Clash document for /sub/:token. The body is YAML,
// not the JSON envelope, because proxy clients consume it directly.
func (h *SubscriptionHandler) Materialize(c *gin.Context) {
	result, err := h.materializeUC.Execute(c.Request.Context(), subusecases.MaterializeCommand{
		Token:     c.Param("token"),
		ClientIP:  utils.ClientIP(c.Request),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Data(http.StatusOK, yamlContentType, []byte(result.Content))
}
