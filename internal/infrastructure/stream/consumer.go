package stream

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"veil/internal/shared/constants"
	"veil/internal/shared/logger"
)

const (
	readCount = 100
	readBlock = time.Second
)

// Entry is one parsed stream entry with its Redis stream ID.
type Entry struct {
	ID    string
	Tuple TrafficTuple
}

// TrafficConsumer reads traffic tuples through a consumer group.
type TrafficConsumer struct {
	client   *redis.Client
	consumer string
	logger   logger.Interface
}

func NewTrafficConsumer(client *redis.Client, consumerName string, log logger.Interface) *TrafficConsumer {
	return &TrafficConsumer{
		client:   client,
		consumer: consumerName,
		logger:   log.Named("traffic_consumer"),
	}
}

// EnsureGroup creates the consumer group from the beginning of the stream,
// creating the stream if needed. An existing group is not an error.
func (c *TrafficConsumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, constants.TrafficStreamKey, constants.TrafficStreamGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Read blocks for up to a second and returns parsed entries plus the IDs of
// entries that could not be parsed. Malformed IDs are never acked here;
// the caller decides whether to reject the batch.
func (c *TrafficConsumer) Read(ctx context.Context) (entries []Entry, malformed []string, err error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    constants.TrafficStreamGroup,
		Consumer: c.consumer,
		Streams:  []string{constants.TrafficStreamKey, ">"},
		Count:    readCount,
		Block:    readBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read traffic stream: %w", err)
	}

	for _, s := range streams {
		for _, msg := range s.Messages {
			tuple, parseErr := parseTuple(msg.Values)
			if parseErr != nil {
				c.logger.Warnw("malformed traffic entry",
					"id", msg.ID,
					"error", parseErr,
				)
				malformed = append(malformed, msg.ID)
				continue
			}
			entries = append(entries, Entry{ID: msg.ID, Tuple: tuple})
		}
	}

	return entries, malformed, nil
}

// Ack acknowledges processed entries.
func (c *TrafficConsumer) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, constants.TrafficStreamKey, constants.TrafficStreamGroup, ids...).Err(); err != nil {
		return fmt.Errorf("failed to ack traffic entries: %w", err)
	}
	return nil
}

func parseTuple(values map[string]any) (TrafficTuple, error) {
	nodeID, err := fieldUint(values, "node_id")
	if err != nil {
		return TrafficTuple{}, err
	}
	userID, err := fieldUint(values, "user_id")
	if err != nil {
		return TrafficTuple{}, err
	}
	upload, err := fieldInt(values, "upload")
	if err != nil {
		return TrafficTuple{}, err
	}
	download, err := fieldInt(values, "download")
	if err != nil {
		return TrafficTuple{}, err
	}
	timestamp, err := fieldInt(values, "timestamp")
	if err != nil {
		return TrafficTuple{}, err
	}

	return TrafficTuple{
		NodeID:    nodeID,
		UserID:    userID,
		Upload:    upload,
		Download:  download,
		Timestamp: timestamp,
	}, nil
}

func fieldString(values map[string]any, key string) (string, error) {
	raw, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	return s, nil
}

func fieldUint(values map[string]any, key string) (uint, error) {
	s, err := fieldString(values, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q is not a decimal integer: %w", key, err)
	}
	return uint(v), nil
}

func fieldInt(values map[string]any, key string) (int64, error) {
	s, err := fieldString(values, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q is not a decimal integer: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("field %q is negative", key)
	}
	return v, nil
}
