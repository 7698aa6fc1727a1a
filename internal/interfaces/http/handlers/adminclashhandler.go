package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	adminusecases "veil/internal/application/admin/usecases"
	subusecases "veil/internal/application/subscription/usecases"
	"veil/internal/domain/subscription"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type AdminClashHandler struct {
	clashUC    *adminusecases.ManageClashConfigUseCase
	generateUC *subusecases.GenerateClashDocumentUseCase
	logger     logger.Interface
}

func NewAdminClashHandler(
	clashUC *adminusecases.ManageClashConfigUseCase,
	generateUC *subusecases.GenerateClashDocumentUseCase,
	log logger.Interface,
) *AdminClashHandler {
	return &AdminClashHandler{
		clashUC:    clashUC,
		generateUC: generateUC,
		logger:     log.Named("admin_clash_handler"),
	}
}

// Generate returns the Clash document as subscribers would receive it,
// rendered from the current configuration.
func (h *AdminClashHandler) Generate(c *gin.Context) {
	content, err := h.generateUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Data(http.StatusOK, yamlContentType, []byte(content))
}

type SaveProxyGroupRequest struct {
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=select url-test"`
	URL       string `json:"url"`
	Interval  int    `json:"interval"`
	SortOrder int    `json:"sort_order"`
}

func (h *AdminClashHandler) ListProxyGroups(c *gin.Context) {
	groups, err := h.clashUC.ListProxyGroups(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		items = append(items, proxyGroupToResponse(g))
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

func (h *AdminClashHandler) CreateProxyGroup(c *gin.Context) {
	var req SaveProxyGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	g, err := h.clashUC.CreateProxyGroup(c.Request.Context(), adminusecases.SaveProxyGroupCommand{
		Name:      req.Name,
		Type:      req.Type,
		URL:       req.URL,
		Interval:  req.Interval,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, proxyGroupToResponse(g), "proxy group created")
}

func (h *AdminClashHandler) UpdateProxyGroup(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid group id")
		return
	}

	var req SaveProxyGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	g, err := h.clashUC.UpdateProxyGroup(c.Request.Context(), adminusecases.SaveProxyGroupCommand{
		ID:        uint(groupID),
		Name:      req.Name,
		Type:      req.Type,
		URL:       req.URL,
		Interval:  req.Interval,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "proxy group updated", proxyGroupToResponse(g))
}

func (h *AdminClashHandler) DeleteProxyGroup(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.clashUC.DeleteProxyGroup(c.Request.Context(), uint(groupID)); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "proxy group deleted", nil)
}

type SaveRuleRequest struct {
	RuleType  string `json:"rule_type" binding:"required"`
	Value     string `json:"value"`
	Target    string `json:"target" binding:"required"`
	NoResolve bool   `json:"no_resolve"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

func (r *SaveRuleRequest) active() bool {
	if r.IsActive == nil {
		return true
	}
	return *r.IsActive
}

func (h *AdminClashHandler) ListRules(c *gin.Context) {
	rules, err := h.clashUC.ListRules(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(rules))
	for _, rule := range rules {
		items = append(items, ruleToResponse(rule))
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

func (h *AdminClashHandler) CreateRule(c *gin.Context) {
	var req SaveRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	rule, err := h.clashUC.CreateRule(c.Request.Context(), adminusecases.SaveRuleCommand{
		RuleType:  req.RuleType,
		Value:     req.Value,
		Target:    req.Target,
		NoResolve: req.NoResolve,
		SortOrder: req.SortOrder,
		IsActive:  req.active(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, ruleToResponse(rule), "rule created")
}

func (h *AdminClashHandler) UpdateRule(c *gin.Context) {
	ruleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid rule id")
		return
	}

	var req SaveRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	rule, err := h.clashUC.UpdateRule(c.Request.Context(), adminusecases.SaveRuleCommand{
		ID:        uint(ruleID),
		RuleType:  req.RuleType,
		Value:     req.Value,
		Target:    req.Target,
		NoResolve: req.NoResolve,
		SortOrder: req.SortOrder,
		IsActive:  req.active(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "rule updated", ruleToResponse(rule))
}

func (h *AdminClashHandler) DeleteRule(c *gin.Context) {
	ruleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid rule id")
		return
	}

	if err := h.clashUC.DeleteRule(c.Request.Context(), uint(ruleID)); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "rule deleted", nil)
}

func proxyGroupToResponse(g *subscription.ClashProxyGroup) gin.H {
	return gin.H{
		"id":         g.ID,
		"name":       g.Name,
		"type":       string(g.Type),
		"url":        g.URL,
		"interval":   g.Interval,
		"sort_order": g.SortOrder,
	}
}

func ruleToResponse(rule *subscription.ClashRule) gin.H {
	return gin.H{
		"id":         rule.ID,
		"rule_type":  rule.RuleType,
		"value":      rule.Value,
		"target":     rule.Target,
		"no_resolve": rule.NoResolve,
		"sort_order": rule.SortOrder,
		"is_active":  rule.IsActive,
	}
}
