package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veil/internal/shared/constants"
	"veil/internal/shared/logger"
)

const subscriptionTTL = 5 * time.Minute

// SubscriptionCache caches rendered subscription documents by token.
type SubscriptionCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewSubscriptionCache(client *redis.Client, log logger.Interface) *SubscriptionCache {
	return &SubscriptionCache{
		client: client,
		logger: log.Named("subscription_cache"),
	}
}

func (c *SubscriptionCache) key(token string) string {
	return constants.CacheKeySubscriptionPfx + token
}

// Get returns the cached document, or "" on miss.
func (c *SubscriptionCache) Get(ctx context.Context, token string) (string, error) {
	content, err := c.client.Get(ctx, c.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get subscription from cache: %w", err)
	}
	return content, nil
}

func (c *SubscriptionCache) Set(ctx context.Context, token, content string) error {
	if err := c.client.Set(ctx, c.key(token), content, subscriptionTTL).Err(); err != nil {
		return fmt.Errorf("failed to set subscription cache: %w", err)
	}
	return nil
}

func (c *SubscriptionCache) Invalidate(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, c.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate subscription cache: %w", err)
	}
	return nil
}
