// The worker drains the traffic stream and applies usage to user accounts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"veil/internal/application/traffic"
	"veil/internal/infrastructure/cache"
	"veil/internal/infrastructure/config"
	"veil/internal/infrastructure/database"
	"veil/internal/infrastructure/repository"
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
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger().Named("worker")

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	consumer := stream.NewTrafficConsumer(redisClient, consumerName, log)
	userRepo := repository.NewUserRepository(database.Get(), log)
	nodeRepo := repository.NewNodeRepository(database.Get(), log)
	trafficLogRepo := repository.NewTrafficLogRepository(database.Get(), log)
	aggregator := traffic.NewAggregator(consumer, userRepo, nodeRepo, trafficLogRepo, log)

	log.Infow("worker starting", "consumer", consumerName)
	if err := aggregator.Run(ctx); err != nil {
		return fmt.Errorf("aggregator stopped: %w", err)
	}

	log.Infow("worker exited gracefully")
	return nil
}
