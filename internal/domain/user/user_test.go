package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice@example.com", "hash", "ALICE123", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, u.Status)
	assert.False(t, u.IsAdmin)

	_, err = NewUser("not-an-email", "hash", "ALICE123", nil)
	assert.Error(t, err)

	_, err = NewUser("alice@example.com", "", "ALICE123", nil)
	assert.Error(t, err)

	_, err = NewUser("alice@example.com", "hash", "bad", nil)
	assert.Error(t, err)
}

func TestUser_HasTraffic(t *testing.T) {
	u := &User{TrafficQuota: 100, TrafficUsed: 99}
	assert.True(t, u.HasTraffic())

	u.TrafficUsed = 100
	assert.False(t, u.HasTraffic())

	// A fresh account with no quota has nothing to spend.
	fresh := &User{}
	assert.False(t, fresh.HasTraffic())
}

func TestUser_CanAfford(t *testing.T) {
	u := &User{Balance: 100}
	assert.True(t, u.CanAfford(100))
	assert.True(t, u.CanAfford(0))
	assert.False(t, u.CanAfford(101))
}

func TestUser_WasReferredBy(t *testing.T) {
	u := &User{ID: 1}
	_, ok := u.WasReferredBy()
	assert.False(t, ok)

	referrer := uint(2)
	u.ReferredBy = &referrer
	id, ok := u.WasReferredBy()
	require.True(t, ok)
	assert.Equal(t, uint(2), id)

	self := uint(1)
	u.ReferredBy = &self
	_, ok = u.WasReferredBy()
	assert.False(t, ok, "self referral never pays out")
}
