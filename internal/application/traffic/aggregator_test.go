package traffic

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/domain/node"
	"veil/internal/infrastructure/stream"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeConsumer struct {
	entries   []stream.Entry
	malformed []string
	acked     [][]string
}

func (c *fakeConsumer) EnsureGroup(ctx context.Context) error { return nil }

func (c *fakeConsumer) Read(ctx context.Context) ([]stream.Entry, []string, error) {
	entries, malformed := c.entries, c.malformed
	c.entries, c.malformed = nil, nil
	return entries, malformed, nil
}

func (c *fakeConsumer) Ack(ctx context.Context, ids ...string) error {
	c.acked = append(c.acked, ids)
	return nil
}

func (c *fakeConsumer) allAcked() []string {
	var out []string
	for _, batch := range c.acked {
		out = append(out, batch...)
	}
	return out
}

type fakeUserRepo struct {
	usage   map[uint]int64
	failFor map[uint]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{usage: make(map[uint]int64), failFor: make(map[uint]bool)}
}

func (r *fakeUserRepo) AddTrafficUsed(ctx context.Context, id uint, delta int64) error {
	if r.failFor[id] {
		return errors.NewInternalError("update failed")
	}
	r.usage[id] += delta
	return nil
}

type fakeNodeRepo struct {
	upload   map[uint]int64
	download map[uint]int64
}

func newFakeNodeRepo() *fakeNodeRepo {
	return &fakeNodeRepo{upload: make(map[uint]int64), download: make(map[uint]int64)}
}

func (r *fakeNodeRepo) AddTraffic(ctx context.Context, id uint, upload, download int64) error {
	r.upload[id] += upload
	r.download[id] += download
	return nil
}

type fakeTrafficLogRepo struct {
	logs []*node.TrafficLog
}

func (r *fakeTrafficLogRepo) Create(ctx context.Context, entry *node.TrafficLog) error {
	r.logs = append(r.logs, entry)
	return nil
}

func entry(id string, nodeID, userID uint, upload, download int64) stream.Entry {
	return stream.Entry{
		ID: id,
		Tuple: stream.TrafficTuple{
			NodeID:   nodeID,
			UserID:   userID,
			Upload:   upload,
			Download: download,
		},
	}
}

func newTestAggregator(consumer *fakeConsumer) (*Aggregator, *fakeUserRepo, *fakeNodeRepo, *fakeTrafficLogRepo) {
	users := newFakeUserRepo()
	nodes := newFakeNodeRepo()
	logs := &fakeTrafficLogRepo{}
	return NewAggregator(consumer, users, nodes, logs, testLogger()), users, nodes, logs
}

func TestAggregator_AggregatesPerUser(t *testing.T) {
	consumer := &fakeConsumer{entries: []stream.Entry{
		entry("1-0", 1, 10, 100, 200),
		entry("1-1", 1, 10, 50, 50),
		entry("1-2", 2, 20, 1000, 0),
	}}
	agg, users, nodes, logs := newTestAggregator(consumer)

	require.NoError(t, agg.processBatch(context.Background()))

	assert.Equal(t, int64(400), users.usage[10])
	assert.Equal(t, int64(1000), users.usage[20])
	assert.ElementsMatch(t, []string{"1-0", "1-1", "1-2"}, consumer.allAcked())

	assert.Equal(t, int64(150), nodes.upload[1])
	assert.Equal(t, int64(250), nodes.download[1])
	assert.Equal(t, int64(1000), nodes.upload[2])
	assert.Len(t, logs.logs, 3)
}

func TestAggregator_WritesOneLogPerSample(t *testing.T) {
	consumer := &fakeConsumer{entries: []stream.Entry{
		entry("1-0", 3, 10, 100, 200),
	}}
	agg, _, _, logs := newTestAggregator(consumer)

	require.NoError(t, agg.processBatch(context.Background()))

	require.Len(t, logs.logs, 1)
	assert.Equal(t, uint(10), logs.logs[0].UserID)
	assert.Equal(t, uint(3), logs.logs[0].NodeID)
	assert.Equal(t, int64(100), logs.logs[0].Upload)
	assert.Equal(t, int64(200), logs.logs[0].Download)
}

func TestAggregator_AcksOnlyAppliedUsers(t *testing.T) {
	consumer := &fakeConsumer{entries: []stream.Entry{
		entry("1-0", 1, 10, 100, 0),
		entry("1-1", 1, 20, 200, 0),
	}}
	agg, users, nodes, logs := newTestAggregator(consumer)
	users.failFor[20] = true

	require.NoError(t, agg.processBatch(context.Background()))

	// Entries for the failed user stay pending for redelivery.
	assert.Equal(t, []string{"1-0"}, consumer.allAcked())
	assert.Equal(t, int64(100), users.usage[10])
	assert.Zero(t, users.usage[20])

	// Node totals and logs only reflect the applied entry.
	assert.Equal(t, int64(100), nodes.upload[1])
	assert.Len(t, logs.logs, 1)
}

func TestAggregator_RejectsMalformedBatchWithoutAck(t *testing.T) {
	consumer := &fakeConsumer{
		entries:   []stream.Entry{entry("1-1", 1, 10, 5, 5)},
		malformed: []string{"1-0"},
	}
	agg, users, _, _ := newTestAggregator(consumer)

	err := agg.processBatch(context.Background())
	require.Error(t, err)

	// Nothing is acked and nothing is applied; the whole batch stays
	// pending until the bad entries are removed from the stream.
	assert.Empty(t, consumer.acked)
	assert.Empty(t, users.usage)
}

func TestAggregator_EmptyBatchIsNoop(t *testing.T) {
	consumer := &fakeConsumer{}
	agg, users, _, _ := newTestAggregator(consumer)

	require.NoError(t, agg.processBatch(context.Background()))
	assert.Empty(t, consumer.acked)
	assert.Empty(t, users.usage)
}
