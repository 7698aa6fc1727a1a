package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veil/internal/shared/constants"
	"veil/internal/shared/logger"
)

// CachedUserPackage is the entitlement snapshot served to hot paths.
type CachedUserPackage struct {
	TrafficQuota int64      `json:"traffic_quota"`
	TrafficUsed  int64      `json:"traffic_used"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Status       string     `json:"status"`
}

const userPackageTTL = 5 * time.Minute

// UserPackageCache caches per-user entitlement snapshots.
type UserPackageCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewUserPackageCache(client *redis.Client, log logger.Interface) *UserPackageCache {
	return &UserPackageCache{
		client: client,
		logger: log.Named("user_package_cache"),
	}
}

func (c *UserPackageCache) key(userID uint) string {
	return fmt.Sprintf("%s%d", constants.CacheKeyUserPackagePfx, userID)
}

// Get returns the cached snapshot, or nil on miss.
func (c *UserPackageCache) Get(ctx context.Context, userID uint) (*CachedUserPackage, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user package from cache: %w", err)
	}

	var cached CachedUserPackage
	if err := json.Unmarshal(data, &cached); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.logger.Warnw("corrupt user package cache entry", "user_id", userID, "error", err)
		_ = c.client.Del(ctx, c.key(userID)).Err()
		return nil, nil
	}

	return &cached, nil
}

func (c *UserPackageCache) Set(ctx context.Context, userID uint, snapshot *CachedUserPackage) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal user package: %w", err)
	}

	if err := c.client.Set(ctx, c.key(userID), data, userPackageTTL).Err(); err != nil {
		return fmt.Errorf("failed to set user package cache: %w", err)
	}
	return nil
}

func (c *UserPackageCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user package cache: %w", err)
	}
	return nil
}
