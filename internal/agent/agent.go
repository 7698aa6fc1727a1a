package agent

import (
	"context"
	"strconv"
	"sync"
	"time"

	"veil/internal/infrastructure/pubsub"
	"veil/internal/shared/goroutine"
	"veil/internal/shared/logger"
)

// ConfigEventSubscriber delivers reload events published by the control
// plane for this node.
type ConfigEventSubscriber interface {
	Subscribe(ctx context.Context, nodeID string, handler pubsub.NodeConfigEventHandler) error
}

// Agent runs the node-side loops: configuration sync, user sync,
// traffic reporting, and heartbeats.
type Agent struct {
	cfg      *Config
	api      *APIClient
	xray     *XrayManager
	reporter *TrafficReporter
	health   *HealthMonitor
	events   ConfigEventSubscriber
	users    *userIndex
	logger   logger.Interface

	mu      sync.Mutex
	current *NodeConfig
}

func New(cfg *Config, producer TrafficPublisher, events ConfigEventSubscriber, log logger.Interface) *Agent {
	users := newUserIndex()
	api := NewAPIClient(cfg, log)
	xray := NewXrayManager(cfg, log)

	return &Agent{
		cfg:      cfg,
		api:      api,
		xray:     xray,
		reporter: NewTrafficReporter(cfg, producer, users, log),
		health:   NewHealthMonitor(cfg, api, xray, users, log),
		events:   events,
		users:    users,
		logger:   log,
	}
}

// Run performs the initial sync and then blocks running all loops until
// ctx is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.syncConfig(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	loops := map[string]func(context.Context){
		"traffic_reporter": a.reporter.Run,
		"health_monitor":   a.health.Run,
		"user_sync":        a.userSyncLoop,
		"config_events":    a.eventLoop,
	}
	for name, loop := range loops {
		wg.Add(1)
		loop := loop
		goroutine.SafeGo(a.logger, name, func() {
			defer wg.Done()
			loop(ctx)
		})
	}

	<-ctx.Done()
	wg.Wait()
	a.logger.Infow("agent stopped")
	return nil
}

// syncConfig fetches the node definition and applies it to Xray.
func (a *Agent) syncConfig(ctx context.Context) error {
	cfg, err := a.api.FetchConfig(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.current = cfg
	a.mu.Unlock()
	a.users.Replace(cfg.Users)

	if err := a.xray.Apply(ctx, cfg, a.users.Eligible()); err != nil {
		return err
	}

	a.logger.Infow("node config synced",
		"node_id", cfg.NodeID,
		"protocol", cfg.Protocol,
		"port", cfg.Port,
		"users", len(cfg.Users),
	)
	return nil
}

// userSyncLoop refreshes the user set periodically and reprovisions
// Xray when the eligible set changes.
func (a *Agent) userSyncLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.UserSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			users, err := a.api.FetchUsers(ctx)
			if err != nil {
				a.logger.Warnw("user sync failed", "error", err)
				continue
			}

			if !a.users.Replace(users) {
				continue
			}

			a.mu.Lock()
			current := a.current
			a.mu.Unlock()
			if current == nil {
				continue
			}

			a.logger.Infow("user set changed, reprovisioning", "users", len(users))
			if err := a.xray.Apply(ctx, current, a.users.Eligible()); err != nil {
				a.logger.Errorw("failed to reprovision xray", "error", err)
			}
		}
	}
}

// eventLoop subscribes to reload events and re-syncs on each one. The
// subscription is re-established after transient Redis failures.
func (a *Agent) eventLoop(ctx context.Context) {
	nodeID := strconv.FormatUint(uint64(a.cfg.NodeID), 10)

	for {
		err := a.events.Subscribe(ctx, nodeID, func(ctx context.Context, event pubsub.NodeConfigEvent) {
			a.logger.Infow("config reload requested", "action", event.Action)
			if err := a.syncConfig(ctx); err != nil {
				a.logger.Errorw("config re-sync failed", "error", err)
			}
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			a.logger.Warnw("config event subscription lost, retrying", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
