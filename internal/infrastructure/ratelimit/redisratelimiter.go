package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"veil/internal/shared/logger"
)

const (
	defaultLimit  = 60
	defaultWindow = time.Minute
)

// RedisRateLimiter counts requests per key in fixed one-minute windows.
// Redis failures fail open: the request is allowed and the error logged.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger logger.Interface
}

func NewRedisRateLimiter(client *redis.Client, log logger.Interface) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  defaultLimit,
		window: defaultWindow,
		logger: log.Named("rate_limiter"),
	}
}

func (l *RedisRateLimiter) Allow(key string) Result {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warnw("rate limiter unavailable, allowing request",
			"key", key,
			"error", err,
		)
		return Result{Allowed: true, Limit: l.limit, Remaining: l.limit}
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
	}
}
