// Package traffic turns node usage reports into per-user accounting.
package traffic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veil/internal/domain/node"
	"veil/internal/infrastructure/stream"
	"veil/internal/shared/logger"
)

type UserRepository interface {
	AddTrafficUsed(ctx context.Context, id uint, delta int64) error
}

type NodeRepository interface {
	AddTraffic(ctx context.Context, id uint, upload, download int64) error
}

type TrafficLogRepository interface {
	Create(ctx context.Context, entry *node.TrafficLog) error
}

type Consumer interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context) (entries []stream.Entry, malformed []string, err error)
	Ack(ctx context.Context, ids ...string) error
}

// Aggregator drains the traffic stream, sums usage per user per batch, and
// applies it to the users table, the per-node lifetime totals, and the
// append-only traffic log. An entry is acknowledged only once its user's
// update committed, so a crash mid-batch redelivers unacked entries
// instead of losing them. A batch containing malformed entries is rejected
// without acknowledging anything; the bad IDs stay pending until an
// operator removes them with XDEL.
type Aggregator struct {
	consumer Consumer
	userRepo UserRepository
	nodeRepo NodeRepository
	logRepo  TrafficLogRepository
	logger   logger.Interface
}

func NewAggregator(consumer Consumer, userRepo UserRepository, nodeRepo NodeRepository, logRepo TrafficLogRepository, log logger.Interface) *Aggregator {
	return &Aggregator{
		consumer: consumer,
		userRepo: userRepo,
		nodeRepo: nodeRepo,
		logRepo:  logRepo,
		logger:   log.Named("traffic_aggregator"),
	}
}

// Run processes batches until the context is cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	if err := a.consumer.EnsureGroup(ctx); err != nil {
		return err
	}

	a.logger.Infow("traffic aggregator started")
	for {
		select {
		case <-ctx.Done():
			a.logger.Infow("traffic aggregator stopping")
			return nil
		default:
		}

		if err := a.processBatch(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			a.logger.Errorw("failed to process traffic batch", "error", err)
			// Back off so a dead Redis does not spin the loop.
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (a *Aggregator) processBatch(ctx context.Context) error {
	entries, malformed, err := a.consumer.Read(ctx)
	if err != nil {
		return err
	}

	if len(malformed) > 0 {
		// Nothing is acked, so the batch stays pending. The bad entries
		// cannot ever parse; operators clear them with XDEL.
		return fmt.Errorf("batch contains %d malformed entries: %v", len(malformed), malformed)
	}
	if len(entries) == 0 {
		return nil
	}

	perUser := make(map[uint]int64)
	entriesByUser := make(map[uint][]stream.Entry)
	for _, e := range entries {
		perUser[e.Tuple.UserID] += e.Tuple.Upload + e.Tuple.Download
		entriesByUser[e.Tuple.UserID] = append(entriesByUser[e.Tuple.UserID], e)
	}

	type nodeTotals struct{ upload, download int64 }
	perNode := make(map[uint]nodeTotals)

	var ackable []string
	for userID, total := range perUser {
		if err := a.userRepo.AddTrafficUsed(ctx, userID, total); err != nil {
			a.logger.Errorw("failed to apply traffic usage",
				"user_id", userID,
				"bytes", total,
				"error", err,
			)
			continue
		}

		for _, e := range entriesByUser[userID] {
			t := e.Tuple
			if err := a.logRepo.Create(ctx, &node.TrafficLog{
				UserID:     t.UserID,
				NodeID:     t.NodeID,
				Upload:     t.Upload,
				Download:   t.Download,
				RecordedAt: time.Unix(t.Timestamp, 0),
			}); err != nil {
				// The audit trail is secondary to accounting; the usage
				// already committed, so the entry is still acked.
				a.logger.Warnw("failed to record traffic log",
					"user_id", t.UserID,
					"node_id", t.NodeID,
					"error", err,
				)
			}

			totals := perNode[t.NodeID]
			totals.upload += t.Upload
			totals.download += t.Download
			perNode[t.NodeID] = totals

			ackable = append(ackable, e.ID)
		}
	}

	for nodeID, totals := range perNode {
		if err := a.nodeRepo.AddTraffic(ctx, nodeID, totals.upload, totals.download); err != nil {
			a.logger.Warnw("failed to update node traffic totals",
				"node_id", nodeID,
				"error", err,
			)
		}
	}

	if len(ackable) > 0 {
		if err := a.consumer.Ack(ctx, ackable...); err != nil {
			a.logger.Warnw("failed to ack traffic entries", "count", len(ackable), "error", err)
		}
	}

	a.logger.Debugw("traffic batch processed",
		"entries", len(entries),
		"users", len(perUser),
		"acked", len(ackable),
	)
	return nil
}
