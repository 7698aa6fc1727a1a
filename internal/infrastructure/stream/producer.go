// Package stream implements the Redis Streams traffic reporting pipeline.
package stream

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"veil/internal/shared/constants"
)

// TrafficTuple is one usage sample reported by a node agent.
type TrafficTuple struct {
	NodeID    uint
	UserID    uint
	Upload    int64
	Download  int64
	Timestamp int64
}

// TrafficProducer appends traffic tuples to the shared stream.
type TrafficProducer struct {
	client *redis.Client
}

func NewTrafficProducer(client *redis.Client) *TrafficProducer {
	return &TrafficProducer{client: client}
}

// Publish appends a tuple with auto-generated ID.
func (p *TrafficProducer) Publish(ctx context.Context, t TrafficTuple) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: constants.TrafficStreamKey,
		ID:     "*",
		Values: map[string]any{
			"node_id":   strconv.FormatUint(uint64(t.NodeID), 10),
			"user_id":   strconv.FormatUint(uint64(t.UserID), 10),
			"upload":    strconv.FormatInt(t.Upload, 10),
			"download":  strconv.FormatInt(t.Download, 10),
			"timestamp": strconv.FormatInt(t.Timestamp, 10),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append traffic tuple: %w", err)
	}
	return nil
}
