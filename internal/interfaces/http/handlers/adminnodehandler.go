package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	nodeusecases "veil/internal/application/node/usecases"
	"veil/internal/domain/node"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type AdminNodeHandler struct {
	createUC *nodeusecases.CreateNodeUseCase
	updateUC *nodeusecases.UpdateNodeUseCase
	deleteUC *nodeusecases.DeleteNodeUseCase
	listUC   *nodeusecases.ListNodesUseCase
	logger   logger.Interface
}

func NewAdminNodeHandler(
	createUC *nodeusecases.CreateNodeUseCase,
	updateUC *nodeusecases.UpdateNodeUseCase,
	deleteUC *nodeusecases.DeleteNodeUseCase,
	listUC *nodeusecases.ListNodesUseCase,
	log logger.Interface,
) *AdminNodeHandler {
	return &AdminNodeHandler{
		createUC: createUC,
		updateUC: updateUC,
		deleteUC: deleteUC,
		listUC:   listUC,
		logger:   log.Named("admin_node_handler"),
	}
}

type CreateNodeRequest struct {
	Name           string         `json:"name" binding:"required"`
	Host           string         `json:"host" binding:"required"`
	Port           int            `json:"port" binding:"required"`
	Protocol       string         `json:"protocol" binding:"required,oneof=shadowsocks vmess trojan hysteria2 vless"`
	Config         map[string]any `json:"config"`
	MaxUsers       int            `json:"max_users"`
	SortOrder      int            `json:"sort_order"`
	IncludeInClash *bool          `json:"include_in_clash"`
}

func (h *AdminNodeHandler) Create(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	n, err := h.createUC.Execute(c.Request.Context(), nodeusecases.CreateNodeCommand{
		Name:           req.Name,
		Host:           req.Host,
		Port:           req.Port,
		Protocol:       req.Protocol,
		Config:         req.Config,
		MaxUsers:       req.MaxUsers,
		SortOrder:      req.SortOrder,
		IncludeInClash: req.IncludeInClash,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	// The secret is only returned on creation so the operator can provision
	// the agent.
	resp := nodeToResponse(n)
	resp["secret"] = n.Secret
	utils.CreatedResponse(c, resp, "node created")
}

type UpdateNodeRequest struct {
	Name           *string        `json:"name"`
	Host           *string        `json:"host"`
	Port           *int           `json:"port"`
	Protocol       *string        `json:"protocol"`
	Config         map[string]any `json:"config"`
	Status         *string        `json:"status"`
	MaxUsers       *int           `json:"max_users"`
	SortOrder      *int           `json:"sort_order"`
	IncludeInClash *bool          `json:"include_in_clash"`
}

func (h *AdminNodeHandler) Update(c *gin.Context) {
	nodeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid node id")
		return
	}

	var req UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	n, err := h.updateUC.Execute(c.Request.Context(), nodeusecases.UpdateNodeCommand{
		NodeID:         uint(nodeID),
		Name:           req.Name,
		Host:           req.Host,
		Port:           req.Port,
		Protocol:       req.Protocol,
		Config:         req.Config,
		Status:         req.Status,
		MaxUsers:       req.MaxUsers,
		SortOrder:      req.SortOrder,
		IncludeInClash: req.IncludeInClash,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "node updated", nodeToResponse(n))
}

func (h *AdminNodeHandler) Delete(c *gin.Context) {
	nodeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid node id")
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), uint(nodeID)); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "node deleted", gin.H{"node_id": nodeID})
}

func (h *AdminNodeHandler) List(c *gin.Context) {
	nodes, err := h.listUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, nodeToResponse(n))
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

func nodeToResponse(n *node.Node) gin.H {
	return gin.H{
		"id":               n.ID,
		"name":             n.Name,
		"host":             n.Host,
		"port":             n.Port,
		"protocol":         string(n.Protocol),
		"config":           n.Config,
		"status":           string(n.Status),
		"max_users":        n.MaxUsers,
		"current_users":    n.CurrentUsers,
		"sort_order":       n.SortOrder,
		"include_in_clash": n.IncludeInClash,
		"last_heartbeat":   n.LastHeartbeat,
		"created_at":       n.CreatedAt,
	}
}
