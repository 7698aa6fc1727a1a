package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"veil/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func testLimiter(client *redis.Client, limit int) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: time.Minute,
		logger: testLogger(),
	}
}

func TestRedisRateLimiter_WindowCounts(t *testing.T) {
	client := setupTestRedis(t)
	limiter := testLimiter(client, 3)

	key := "rate_limit:user:1"

	for i := 0; i < 3; i++ {
		res := limiter.Allow(key)
		assert.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 3-(i+1), res.Remaining)
	}

	res := limiter.Allow(key)
	assert.False(t, res.Allowed, "4th request should be denied")
	assert.Equal(t, 0, res.Remaining)
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	client := setupTestRedis(t)
	limiter := testLimiter(client, 2)

	for i := 0; i < 2; i++ {
		assert.True(t, limiter.Allow("rate_limit:user:1").Allowed)
	}
	assert.False(t, limiter.Allow("rate_limit:user:1").Allowed)

	assert.True(t, limiter.Allow("rate_limit:anonymous:10.0.0.1").Allowed,
		"other keys keep their own window")
}

func TestRedisRateLimiter_WindowExpires(t *testing.T) {
	client := setupTestRedis(t)
	limiter := testLimiter(client, 1)
	limiter.window = time.Second

	key := "rate_limit:user:2"
	assert.True(t, limiter.Allow(key).Allowed)
	assert.False(t, limiter.Allow(key).Allowed)

	time.Sleep(1100 * time.Millisecond)

	assert.True(t, limiter.Allow(key).Allowed, "new window after expiry")
}

func TestRedisRateLimiter_FailOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := testLimiter(client, 3)

	res := limiter.Allow("rate_limit:user:1")
	assert.True(t, res.Allowed, "unreachable Redis must not block requests")
	assert.Equal(t, 3, res.Remaining)
}
