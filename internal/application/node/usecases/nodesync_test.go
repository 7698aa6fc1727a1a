package usecases

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/domain/node"
	"veil/internal/domain/user"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeNodeRepo struct {
	nodes         map[uint]*node.Node
	heartbeatPrev node.Status
}

func newFakeNodeRepo(nodes ...*node.Node) *fakeNodeRepo {
	repo := &fakeNodeRepo{nodes: make(map[uint]*node.Node)}
	for _, n := range nodes {
		repo.nodes[n.ID] = n
	}
	return repo
}

func (r *fakeNodeRepo) Create(ctx context.Context, n *node.Node) error {
	n.ID = uint(len(r.nodes) + 1)
	r.nodes[n.ID] = n
	return nil
}

func (r *fakeNodeRepo) Update(ctx context.Context, n *node.Node) error {
	r.nodes[n.ID] = n
	return nil
}

func (r *fakeNodeRepo) Delete(ctx context.Context, id uint) error {
	delete(r.nodes, id)
	return nil
}

func (r *fakeNodeRepo) FindByID(ctx context.Context, id uint) (*node.Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, errors.NewNotFoundError("node not found")
	}
	return n, nil
}

func (r *fakeNodeRepo) List(ctx context.Context) ([]*node.Node, error) {
	var out []*node.Node
	for _, n := range r.nodes {
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNodeRepo) UpdateHeartbeat(ctx context.Context, id uint, status node.Status, currentUsers *int, at time.Time) (node.Status, error) {
	n, ok := r.nodes[id]
	if !ok {
		return "", errors.NewNotFoundError("node not found")
	}
	previous := r.heartbeatPrev
	if previous == "" {
		previous = n.Status
	}
	n.Status = status
	if currentUsers != nil {
		n.CurrentUsers = *currentUsers
	}
	n.LastHeartbeat = &at
	return previous, nil
}

type fakeUserRepo struct {
	subscribers []*user.User
}

func (r *fakeUserRepo) ListActiveSubscribers(ctx context.Context, now time.Time) ([]*user.User, error) {
	return r.subscribers, nil
}

type fakeNodeCache struct {
	invalidations int
}

func (c *fakeNodeCache) InvalidateActive(ctx context.Context) error {
	c.invalidations++
	return nil
}

func testNode() *node.Node {
	return &node.Node{
		ID:       1,
		Name:     "hk-1",
		Host:     "hk1.example.com",
		Port:     443,
		Protocol: node.ProtocolVLESS,
		Secret:   "s3cretS3cretS3cretS3cretS3cret12",
		Status:   node.StatusOffline,
	}
}

func TestUserCredentialUUID(t *testing.T) {
	first := UserCredentialUUID("user@example.com")
	second := UserCredentialUUID("user@example.com")
	other := UserCredentialUUID("other@example.com")

	assert.Equal(t, first, second, "same email always yields the same credential")
	assert.NotEqual(t, first, other)

	_, err := uuid.Parse(first)
	assert.NoError(t, err)
}

func TestGetNodeConfigUseCase_Execute(t *testing.T) {
	n := testNode()
	userRepo := &fakeUserRepo{subscribers: []*user.User{
		{ID: 1, Email: "a@example.com", TrafficQuota: 100, TrafficUsed: 10},
		{ID: 2, Email: "b@example.com", TrafficQuota: 200, TrafficUsed: 20},
	}}
	uc := NewGetNodeConfigUseCase(newFakeNodeRepo(n), userRepo, testLogger())

	result, err := uc.Execute(context.Background(), NodeConfigCommand{NodeID: 1, Secret: n.Secret})
	require.NoError(t, err)
	assert.Equal(t, n, result.Node)

	require.Len(t, result.Users, 2)
	assert.Equal(t, uint(1), result.Users[0].UserID)
	assert.Equal(t, UserCredentialUUID("a@example.com"), result.Users[0].UUID)
	assert.Equal(t, int64(100), result.Users[0].TrafficQuota)
}

func TestGetNodeConfigUseCase_BadCredentials(t *testing.T) {
	n := testNode()
	uc := NewGetNodeConfigUseCase(newFakeNodeRepo(n), &fakeUserRepo{}, testLogger())

	tests := []struct {
		name string
		cmd  NodeConfigCommand
	}{
		{name: "wrong secret", cmd: NodeConfigCommand{NodeID: 1, Secret: "wrong"}},
		{name: "empty secret", cmd: NodeConfigCommand{NodeID: 1, Secret: ""}},
		{name: "unknown node", cmd: NodeConfigCommand{NodeID: 99, Secret: n.Secret}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.cmd)
			require.Error(t, err)

			appErr, ok := err.(*errors.AppError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorTypeUnauthorized, appErr.Type)
		})
	}
}

func TestHeartbeatUseCase_StatusTransitionInvalidatesCache(t *testing.T) {
	n := testNode()
	repo := newFakeNodeRepo(n)
	cache := &fakeNodeCache{}
	uc := NewHeartbeatUseCase(repo, cache, testLogger())

	result, err := uc.Execute(context.Background(), HeartbeatCommand{
		NodeID: 1,
		Secret: n.Secret,
		Status: "online",
	})
	require.NoError(t, err)
	assert.Equal(t, node.StatusOnline, result.Status)
	assert.Equal(t, 1, cache.invalidations, "offline to online transition invalidates")

	repo.heartbeatPrev = node.StatusOnline
	_, err = uc.Execute(context.Background(), HeartbeatCommand{
		NodeID: 1,
		Secret: n.Secret,
		Status: "online",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations, "steady state does not invalidate")
}

func TestHeartbeatUseCase_ConnectionsOnlyUpdatedWhenReported(t *testing.T) {
	n := testNode()
	n.CurrentUsers = 7
	repo := newFakeNodeRepo(n)
	uc := NewHeartbeatUseCase(repo, &fakeNodeCache{}, testLogger())

	_, err := uc.Execute(context.Background(), HeartbeatCommand{
		NodeID: 1,
		Secret: n.Secret,
		Status: "online",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, repo.nodes[1].CurrentUsers, "omitted count keeps the stored value")

	connections := 3
	_, err = uc.Execute(context.Background(), HeartbeatCommand{
		NodeID:            1,
		Secret:            n.Secret,
		Status:            "online",
		ActiveConnections: &connections,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.nodes[1].CurrentUsers)
}

func TestHeartbeatUseCase_InvalidStatus(t *testing.T) {
	n := testNode()
	uc := NewHeartbeatUseCase(newFakeNodeRepo(n), &fakeNodeCache{}, testLogger())

	_, err := uc.Execute(context.Background(), HeartbeatCommand{
		NodeID: 1,
		Secret: n.Secret,
		Status: "sleeping",
	})
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
}
