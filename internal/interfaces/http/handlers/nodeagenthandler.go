package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	nodeusecases "veil/internal/application/node/usecases"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

// NodeAgentHandler serves the endpoints node agents call. Agents
// authenticate with their node ID and secret rather than a JWT.
type NodeAgentHandler struct {
	configUC    *nodeusecases.GetNodeConfigUseCase
	usersUC     *nodeusecases.GetNodeUsersUseCase
	heartbeatUC *nodeusecases.HeartbeatUseCase
	logger      logger.Interface
}

func NewNodeAgentHandler(
	configUC *nodeusecases.GetNodeConfigUseCase,
	usersUC *nodeusecases.GetNodeUsersUseCase,
	heartbeatUC *nodeusecases.HeartbeatUseCase,
	log logger.Interface,
) *NodeAgentHandler {
	return &NodeAgentHandler{
		configUC:    configUC,
		usersUC:     usersUC,
		heartbeatUC: heartbeatUC,
		logger:      log.Named("node_agent_handler"),
	}
}

func nodeCredentialsFromQuery(c *gin.Context) (uint, string, bool) {
	nodeID, err := strconv.ParseUint(c.Query("node_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "node_id is required")
		return 0, "", false
	}
	secret := c.Query("secret")
	if secret == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "secret is required")
		return 0, "", false
	}
	return uint(nodeID), secret, true
}

func (h *NodeAgentHandler) GetConfig(c *gin.Context) {
	nodeID, secret, ok := nodeCredentialsFromQuery(c)
	if !ok {
		return
	}

	result, err := h.configUC.Execute(c.Request.Context(), nodeusecases.NodeConfigCommand{
		NodeID: nodeID,
		Secret: secret,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	n := result.Node
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"node_id":   n.ID,
		"name":      n.Name,
		"host":      n.Host,
		"port":      n.Port,
		"protocol":  string(n.Protocol),
		"config":    n.Config,
		"max_users": n.MaxUsers,
		"users":     result.Users,
	})
}

func (h *NodeAgentHandler) GetUsers(c *gin.Context) {
	nodeID, secret, ok := nodeCredentialsFromQuery(c)
	if !ok {
		return
	}

	users, err := h.usersUC.Execute(c.Request.Context(), nodeusecases.NodeConfigCommand{
		NodeID: nodeID,
		Secret: secret,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"users": users})
}

// HeartbeatRequest uses a pointer for active_connections so an omitted
// count is distinguishable from a reported zero.
type HeartbeatRequest struct {
	NodeID            uint    `json:"node_id" binding:"required"`
	Secret            string  `json:"secret" binding:"required"`
	Status            string  `json:"status" binding:"required"`
	ActiveConnections *int    `json:"active_connections"`
	CPUUsage          float64 `json:"cpu_usage"`
	MemoryUsage       float64 `json:"memory_usage"`
}

func (h *NodeAgentHandler) Heartbeat(c *gin.Context) {
	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	result, err := h.heartbeatUC.Execute(c.Request.Context(), nodeusecases.HeartbeatCommand{
		NodeID:            req.NodeID,
		Secret:            req.Secret,
		Status:            req.Status,
		ActiveConnections: req.ActiveConnections,
		CPUUsage:          req.CPUUsage,
		MemoryUsage:       req.MemoryUsage,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "heartbeat received", gin.H{
		"node_id":        req.NodeID,
		"status":         string(result.Status),
		"last_heartbeat": result.LastHeartbeat,
	})
}
