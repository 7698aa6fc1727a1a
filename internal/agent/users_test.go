package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIndex_ReplaceDetectsChanges(t *testing.T) {
	idx := newUserIndex()

	changed := idx.Replace([]NodeUser{
		{UserID: 1, Email: "a@example.com", TrafficQuota: 100, TrafficUsed: 0},
		{UserID: 2, Email: "b@example.com", TrafficQuota: 100, TrafficUsed: 50},
	})
	assert.True(t, changed, "first sync populates the eligible set")

	changed = idx.Replace([]NodeUser{
		{UserID: 1, Email: "a@example.com", TrafficQuota: 100, TrafficUsed: 10},
		{UserID: 2, Email: "b@example.com", TrafficQuota: 100, TrafficUsed: 60},
	})
	assert.False(t, changed, "usage growth alone does not change the set")

	changed = idx.Replace([]NodeUser{
		{UserID: 1, Email: "a@example.com", TrafficQuota: 100, TrafficUsed: 10},
		{UserID: 2, Email: "b@example.com", TrafficQuota: 100, TrafficUsed: 100},
	})
	assert.True(t, changed, "user exhausting quota leaves the set")

	changed = idx.Replace([]NodeUser{
		{UserID: 1, Email: "a@example.com", TrafficQuota: 100, TrafficUsed: 10},
		{UserID: 3, Email: "c@example.com", TrafficQuota: 100, TrafficUsed: 0},
	})
	assert.True(t, changed, "new eligible user joins the set")
}

func TestUserIndex_Eligible(t *testing.T) {
	idx := newUserIndex()
	idx.Replace([]NodeUser{
		{UserID: 1, Email: "a@example.com", TrafficQuota: 100, TrafficUsed: 99},
		{UserID: 2, Email: "b@example.com", TrafficQuota: 100, TrafficUsed: 100},
		{UserID: 3, Email: "c@example.com", TrafficQuota: 0, TrafficUsed: 0},
	})

	users := idx.Eligible()
	require.Len(t, users, 1)
	assert.Equal(t, uint(1), users[0].UserID)
}

func TestUserIndex_IDByEmail(t *testing.T) {
	idx := newUserIndex()
	idx.Replace([]NodeUser{
		{UserID: 42, Email: "a@example.com", TrafficQuota: 100},
	})

	id, ok := idx.IDByEmail("a@example.com")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	// Exhausted users stay resolvable so late samples are still attributed.
	idx.Replace([]NodeUser{
		{UserID: 42, Email: "a@example.com", TrafficQuota: 100, TrafficUsed: 100},
	})
	id, ok = idx.IDByEmail("a@example.com")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = idx.IDByEmail("missing@example.com")
	assert.False(t, ok)
}
