package usecases

import (
	"context"
	"time"

	"veil/internal/domain/node"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

// HeartbeatCommand carries an agent liveness report. ActiveConnections
// is nil when the agent did not report a connection count, in which case
// the stored value is kept.
type HeartbeatCommand struct {
	NodeID            uint
	Secret            string
	Status            string
	ActiveConnections *int
	CPUUsage          float64
	MemoryUsage       float64
}

type HeartbeatResult struct {
	Status        node.Status
	LastHeartbeat time.Time
}

// HeartbeatUseCase records an agent's liveness report. A status transition
// invalidates the active node cache so subscriptions pick it up promptly.
type HeartbeatUseCase struct {
	nodeRepo  NodeRepository
	nodeCache NodeCache
	logger    logger.Interface
}

func NewHeartbeatUseCase(nodeRepo NodeRepository, nodeCache NodeCache, log logger.Interface) *HeartbeatUseCase {
	return &HeartbeatUseCase{
		nodeRepo:  nodeRepo,
		nodeCache: nodeCache,
		logger:    log.Named("heartbeat_usecase"),
	}
}

func (uc *HeartbeatUseCase) Execute(ctx context.Context, cmd HeartbeatCommand) (*HeartbeatResult, error) {
	if _, err := authenticateNode(ctx, uc.nodeRepo, uc.logger, cmd.NodeID, cmd.Secret); err != nil {
		return nil, err
	}

	status := node.Status(cmd.Status)
	if !status.Valid() {
		return nil, errors.NewValidationError("invalid node status", cmd.Status)
	}

	now := time.Now()
	previous, err := uc.nodeRepo.UpdateHeartbeat(ctx, cmd.NodeID, status, cmd.ActiveConnections, now)
	if err != nil {
		return nil, err
	}

	if previous != status {
		uc.logger.Infow("node status changed",
			"node_id", cmd.NodeID,
			"from", string(previous),
			"to", string(status),
		)
		if err := uc.nodeCache.InvalidateActive(ctx); err != nil {
			uc.logger.Warnw("failed to invalidate active nodes cache", "error", err)
		}
	}

	connections := -1
	if cmd.ActiveConnections != nil {
		connections = *cmd.ActiveConnections
	}
	uc.logger.Debugw("heartbeat received",
		"node_id", cmd.NodeID,
		"status", string(status),
		"connections", connections,
		"cpu", cmd.CPUUsage,
		"memory", cmd.MemoryUsage,
	)

	return &HeartbeatResult{Status: status, LastHeartbeat: now}, nil
}
