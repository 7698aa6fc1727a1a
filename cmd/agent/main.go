// The agent daemon runs on each proxy node. It provisions Xray from the
// control plane and feeds the traffic stream.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"veil/internal/agent"
	"veil/internal/infrastructure/cache"
	"veil/internal/infrastructure/pubsub"
	"veil/internal/infrastructure/stream"
	"veil/internal/shared/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := agent.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger().Named("agent")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	producer := stream.NewTrafficProducer(redisClient)
	events := pubsub.NewRedisNodeConfigEventBus(redisClient, log)

	log.Infow("agent starting", "node_id", cfg.NodeID, "api_url", cfg.APIURL)

	a := agent.New(cfg, producer, events, log)
	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("agent stopped: %w", err)
	}

	log.Infow("agent exited gracefully")
	return nil
}
