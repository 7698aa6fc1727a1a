// Package usecases implements node administration and the agent-facing
// sync operations.
package usecases

import (
	"context"
	"time"

	"veil/internal/domain/node"
	"veil/internal/domain/user"
)

type NodeRepository interface {
	Create(ctx context.Context, n *node.Node) error
	Update(ctx context.Context, n *node.Node) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*node.Node, error)
	List(ctx context.Context) ([]*node.Node, error)
	UpdateHeartbeat(ctx context.Context, id uint, status node.Status, currentUsers *int, at time.Time) (node.Status, error)
}

type UserRepository interface {
	ListActiveSubscribers(ctx context.Context, now time.Time) ([]*user.User, error)
}

type NodeCache interface {
	InvalidateActive(ctx context.Context) error
}

// ConfigEventPublisher tells a node agent to re-fetch its configuration.
type ConfigEventPublisher interface {
	PublishReload(ctx context.Context, nodeID uint) error
}

type SecretGenerator interface {
	NodeSecret() (string, error)
}
