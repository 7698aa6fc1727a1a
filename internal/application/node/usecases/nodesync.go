package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"veil/internal/domain/node"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

// NodeUser is one provisionable account in an agent sync response. UUID is
// derived deterministically from the email so every node provisions the
// same credential for a given user.
type NodeUser struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	UUID         string `json:"uuid"`
	TrafficQuota int64  `json:"traffic_quota"`
	TrafficUsed  int64  `json:"traffic_used"`
}

// UserCredentialUUID maps an account email to its proxy credential UUID.
func UserCredentialUUID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(email)).String()
}

type NodeConfigCommand struct {
	NodeID uint
	Secret string
}

type NodeConfigResult struct {
	Node  *node.Node
	Users []NodeUser
}

// GetNodeConfigUseCase serves an agent its node definition plus the users
// it should provision. Authentication is the node's own secret.
type GetNodeConfigUseCase struct {
	nodeRepo NodeRepository
	userRepo UserRepository
	logger   logger.Interface
}

func NewGetNodeConfigUseCase(nodeRepo NodeRepository, userRepo UserRepository, log logger.Interface) *GetNodeConfigUseCase {
	return &GetNodeConfigUseCase{
		nodeRepo: nodeRepo,
		userRepo: userRepo,
		logger:   log.Named("node_config_usecase"),
	}
}

func (uc *GetNodeConfigUseCase) Execute(ctx context.Context, cmd NodeConfigCommand) (*NodeConfigResult, error) {
	n, err := authenticateNode(ctx, uc.nodeRepo, uc.logger, cmd.NodeID, cmd.Secret)
	if err != nil {
		return nil, err
	}

	users, err := activeNodeUsers(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}

	return &NodeConfigResult{Node: n, Users: users}, nil
}

type GetNodeUsersUseCase struct {
	nodeRepo NodeRepository
	userRepo UserRepository
	logger   logger.Interface
}

func NewGetNodeUsersUseCase(nodeRepo NodeRepository, userRepo UserRepository, log logger.Interface) *GetNodeUsersUseCase {
	return &GetNodeUsersUseCase{
		nodeRepo: nodeRepo,
		userRepo: userRepo,
		logger:   log.Named("node_users_usecase"),
	}
}

func (uc *GetNodeUsersUseCase) Execute(ctx context.Context, cmd NodeConfigCommand) ([]NodeUser, error) {
	if _, err := authenticateNode(ctx, uc.nodeRepo, uc.logger, cmd.NodeID, cmd.Secret); err != nil {
		return nil, err
	}
	return activeNodeUsers(ctx, uc.userRepo)
}

func authenticateNode(ctx context.Context, repo NodeRepository, log logger.Interface, nodeID uint, secret string) (*node.Node, error) {
	n, err := repo.FindByID(ctx, nodeID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.NewUnauthorizedError("invalid node credentials")
		}
		return nil, err
	}
	if !n.VerifySecret(secret) {
		log.Warnw("node auth failed", "node_id", nodeID)
		return nil, errors.NewUnauthorizedError("invalid node credentials")
	}
	return n, nil
}

func activeNodeUsers(ctx context.Context, userRepo UserRepository) ([]NodeUser, error) {
	subscribers, err := userRepo.ListActiveSubscribers(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	users := make([]NodeUser, 0, len(subscribers))
	for _, u := range subscribers {
		users = append(users, NodeUser{
			UserID:       u.ID,
			Email:        u.Email,
			UUID:         UserCredentialUUID(u.Email),
			TrafficQuota: u.TrafficQuota,
			TrafficUsed:  u.TrafficUsed,
		})
	}
	return users, nil
}
