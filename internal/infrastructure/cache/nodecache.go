package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veil/internal/domain/node"
	"veil/internal/shared/constants"
	"veil/internal/shared/logger"
)

const activeNodesTTL = time.Minute

// NodeCache caches the active node list served to agents and admin views.
type NodeCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewNodeCache(client *redis.Client, log logger.Interface) *NodeCache {
	return &NodeCache{
		client: client,
		logger: log.Named("node_cache"),
	}
}

// GetActive returns the cached node list, or nil on miss.
func (c *NodeCache) GetActive(ctx context.Context) ([]*node.Node, error) {
	data, err := c.client.Get(ctx, constants.CacheKeyActiveNodes).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active nodes from cache: %w", err)
	}

	var nodes []*node.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		c.logger.Warnw("corrupt active nodes cache entry", "error", err)
		_ = c.client.Del(ctx, constants.CacheKeyActiveNodes).Err()
		return nil, nil
	}

	return nodes, nil
}

func (c *NodeCache) SetActive(ctx context.Context, nodes []*node.Node) error {
	data, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal nodes: %w", err)
	}

	if err := c.client.Set(ctx, constants.CacheKeyActiveNodes, data, activeNodesTTL).Err(); err != nil {
		return fmt.Errorf("failed to set active nodes cache: %w", err)
	}
	return nil
}

func (c *NodeCache) InvalidateActive(ctx context.Context) error {
	if err := c.client.Del(ctx, constants.CacheKeyActiveNodes).Err(); err != nil {
		return fmt.Errorf("failed to invalidate active nodes cache: %w", err)
	}
	return nil
}
