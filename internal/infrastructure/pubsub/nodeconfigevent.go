// Package pubsub distributes node configuration change events over Redis.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"veil/internal/shared/constants"
	"veil/internal/shared/logger"
)

// NodeConfigEvent tells an agent to re-sync its configuration.
type NodeConfigEvent struct {
	NodeID    string `json:"node_id"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

const actionReload = "reload"

// NodeConfigEventHandler is a callback for handling node config events.
type NodeConfigEventHandler func(ctx context.Context, event NodeConfigEvent)

// NodeConfigEventPublisher defines the interface for publishing node config events.
type NodeConfigEventPublisher interface {
	PublishReload(ctx context.Context, nodeID uint) error
}

// RedisNodeConfigEventBus distributes reload events to agents. Each event
// goes to the node's own channel and to the broadcast channel.
type RedisNodeConfigEventBus struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisNodeConfigEventBus(client *redis.Client, log logger.Interface) *RedisNodeConfigEventBus {
	return &RedisNodeConfigEventBus{
		client: client,
		logger: log.Named("node_config_events"),
	}
}

// PublishReload notifies the agent for nodeID to re-sync.
func (b *RedisNodeConfigEventBus) PublishReload(ctx context.Context, nodeID uint) error {
	event := NodeConfigEvent{
		NodeID:    strconv.FormatUint(uint64(nodeID), 10),
		Action:    actionReload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channels := []string{
		constants.NodeConfigChannelPfx + event.NodeID,
		constants.NodeConfigChannel,
	}
	for _, channel := range channels {
		if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
			b.logger.Errorw("failed to publish node config event",
				"node_id", event.NodeID,
				"channel", channel,
				"error", err,
			)
			return fmt.Errorf("failed to publish event: %w", err)
		}
	}

	b.logger.Debugw("node config reload published", "node_id", event.NodeID)
	return nil
}

// Subscribe listens on the per-node channel and invokes the handler for
// each event until the context is cancelled.
func (b *RedisNodeConfigEventBus) Subscribe(ctx context.Context, nodeID string, handler NodeConfigEventHandler) error {
	channel := constants.NodeConfigChannelPfx + nodeID
	pubsub := b.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to node config events", "channel", channel)

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("node config subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("node config event channel closed")
				return nil
			}

			var event NodeConfigEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("failed to unmarshal node config event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}

			handler(ctx, event)
		}
	}
}
