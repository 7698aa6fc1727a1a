package usecases

import (
	"context"

	"veil/internal/domain/node"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type CreateNodeCommand struct {
	Name           string
	Host           string
	Port           int
	Protocol       string
	Config         map[string]any
	MaxUsers       int
	SortOrder      int
	IncludeInClash *bool
}

// CreateNodeUseCase registers a node and issues its agent credential.
type CreateNodeUseCase struct {
	nodeRepo  NodeRepository
	nodeCache NodeCache
	generator SecretGenerator
	publisher ConfigEventPublisher
	logger    logger.Interface
}

func NewCreateNodeUseCase(nodeRepo NodeRepository, nodeCache NodeCache, generator SecretGenerator, publisher ConfigEventPublisher, log logger.Interface) *CreateNodeUseCase {
	return &CreateNodeUseCase{
		nodeRepo:  nodeRepo,
		nodeCache: nodeCache,
		generator: generator,
		publisher: publisher,
		logger:    log.Named("create_node_usecase"),
	}
}

func (uc *CreateNodeUseCase) Execute(ctx context.Context, cmd CreateNodeCommand) (*node.Node, error) {
	secret, err := uc.generator.NodeSecret()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate node secret")
	}

	n, err := node.NewNode(cmd.Name, cmd.Host, cmd.Port, node.Protocol(cmd.Protocol), secret, cmd.Config)
	if err != nil {
		return nil, err
	}
	n.MaxUsers = cmd.MaxUsers
	n.SortOrder = cmd.SortOrder
	if cmd.IncludeInClash != nil {
		n.IncludeInClash = *cmd.IncludeInClash
	}

	if err := uc.nodeRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	uc.invalidateActiveNodes(ctx)
	if err := uc.publisher.PublishReload(ctx, n.ID); err != nil {
		uc.logger.Warnw("failed to publish node config update", "node_id", n.ID, "error", err)
	}

	uc.logger.Infow("node created", "node_id", n.ID, "name", n.Name, "protocol", string(n.Protocol))
	return n, nil
}

type UpdateNodeCommand struct {
	NodeID         uint
	Name           *string
	Host           *string
	Port           *int
	Protocol       *string
	Config         map[string]any
	Status         *string
	MaxUsers       *int
	SortOrder      *int
	IncludeInClash *bool
}

// UpdateNodeUseCase applies a partial update and notifies the node's agent.
type UpdateNodeUseCase struct {
	nodeRepo  NodeRepository
	nodeCache NodeCache
	publisher ConfigEventPublisher
	logger    logger.Interface
}

func NewUpdateNodeUseCase(nodeRepo NodeRepository, nodeCache NodeCache, publisher ConfigEventPublisher, log logger.Interface) *UpdateNodeUseCase {
	return &UpdateNodeUseCase{
		nodeRepo:  nodeRepo,
		nodeCache: nodeCache,
		publisher: publisher,
		logger:    log.Named("update_node_usecase"),
	}
}

func (uc *UpdateNodeUseCase) Execute(ctx context.Context, cmd UpdateNodeCommand) (*node.Node, error) {
	n, err := uc.nodeRepo.FindByID(ctx, cmd.NodeID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if *cmd.Name == "" {
			return nil, errors.NewValidationError("node name is required")
		}
		n.Name = *cmd.Name
	}
	if cmd.Host != nil {
		if *cmd.Host == "" {
			return nil, errors.NewValidationError("node host is required")
		}
		n.Host = *cmd.Host
	}
	if cmd.Port != nil {
		if err := utils.ValidatePort(*cmd.Port); err != nil {
			return nil, err
		}
		n.Port = *cmd.Port
	}
	if cmd.Protocol != nil {
		p := node.Protocol(*cmd.Protocol)
		if !p.Valid() {
			return nil, errors.NewValidationError("unsupported protocol", *cmd.Protocol)
		}
		n.Protocol = p
	}
	if cmd.Config != nil {
		n.Config = cmd.Config
	}
	if cmd.Status != nil {
		s := node.Status(*cmd.Status)
		if !s.Valid() {
			return nil, errors.NewValidationError("invalid node status", *cmd.Status)
		}
		n.Status = s
	}
	if cmd.MaxUsers != nil {
		n.MaxUsers = *cmd.MaxUsers
	}
	if cmd.SortOrder != nil {
		n.SortOrder = *cmd.SortOrder
	}
	if cmd.IncludeInClash != nil {
		n.IncludeInClash = *cmd.IncludeInClash
	}

	if err := uc.nodeRepo.Update(ctx, n); err != nil {
		return nil, err
	}

	uc.invalidateActiveNodes(ctx)
	if err := uc.publisher.PublishReload(ctx, n.ID); err != nil {
		uc.logger.Warnw("failed to publish node config update", "node_id", n.ID, "error", err)
	}

	uc.logger.Infow("node updated", "node_id", n.ID)
	return n, nil
}

type DeleteNodeUseCase struct {
	nodeRepo  NodeRepository
	nodeCache NodeCache
	publisher ConfigEventPublisher
	logger    logger.Interface
}

func NewDeleteNodeUseCase(nodeRepo NodeRepository, nodeCache NodeCache, publisher ConfigEventPublisher, log logger.Interface) *DeleteNodeUseCase {
	return &DeleteNodeUseCase{
		nodeRepo:  nodeRepo,
		nodeCache: nodeCache,
		publisher: publisher,
		logger:    log.Named("delete_node_usecase"),
	}
}

func (uc *DeleteNodeUseCase) Execute(ctx context.Context, nodeID uint) error {
	n, err := uc.nodeRepo.FindByID(ctx, nodeID)
	if err != nil {
		return err
	}
	if err := uc.nodeRepo.Delete(ctx, nodeID); err != nil {
		return err
	}

	uc.invalidateActiveNodes(ctx)
	if err := uc.publisher.PublishReload(ctx, nodeID); err != nil {
		uc.logger.Warnw("failed to publish node config update", "node_id", nodeID, "error", err)
	}

	uc.logger.Infow("node deleted", "node_id", nodeID, "name", n.Name)
	return nil
}

type ListNodesUseCase struct {
	nodeRepo NodeRepository
}

func NewListNodesUseCase(nodeRepo NodeRepository) *ListNodesUseCase {
	return &ListNodesUseCase{nodeRepo: nodeRepo}
}

func (uc *ListNodesUseCase) Execute(ctx context.Context) ([]*node.Node, error) {
	return uc.nodeRepo.List(ctx)
}

func (uc *CreateNodeUseCase) invalidateActiveNodes(ctx context.Context) {
	if err := uc.nodeCache.InvalidateActive(ctx); err != nil {
		uc.logger.Warnw("failed to invalidate active nodes cache", "error", err)
	}
}

func (uc *UpdateNodeUseCase) invalidateActiveNodes(ctx context.Context) {
	if err := uc.nodeCache.InvalidateActive(ctx); err != nil {
		uc.logger.Warnw("failed to invalidate active nodes cache", "error", err)
	}
}

func (uc *DeleteNodeUseCase) invalidateActiveNodes(ctx context.Context) {
	if err := uc.nodeCache.InvalidateActive(ctx); err != nil {
		uc.logger.Warnw("failed to invalidate active nodes cache", "error", err)
	}
}
