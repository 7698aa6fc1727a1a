package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/application/subscription/clash"
	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
	"veil/internal/shared/errors"
)

const testToken = "a1B2c3D4e5F6g7H8i9J0a1B2c3D4e5F6g7H8i9J0a1B2c3D4e5F6g7H8i9J0a1B2"

const renderedDoc = "proxies:\n  - name: hk-1\n"

type materializeFixture struct {
	uc        *MaterializeUseCase
	tokenRepo *fakeTokenRepo
	logRepo   *fakeLogRepo
	subCache  *fakeSubCache
	upRepo    *fakeUserPackageRepo
	executor  *syncExecutor
}

func newMaterializeFixture(u *user.User) *materializeFixture {
	tokenRepo := &fakeTokenRepo{tokens: map[string]*subscription.Token{
		testToken: {ID: 7, UserID: u.ID, Token: testToken},
	}}
	logRepo := &fakeLogRepo{}
	subCache := &fakeSubCache{}
	upRepo := &fakeUserPackageRepo{
		latest: &subscription.UserPackage{
			UserID:    u.ID,
			Status:    subscription.UserPackageStatusActive,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		},
	}
	executor := &syncExecutor{}

	uc := NewMaterializeUseCase(
		tokenRepo,
		newFakeUserRepo(u),
		upRepo,
		&fakeNodeRepo{},
		&fakeClashRepo{},
		logRepo,
		subCache,
		&fakeRenderer{output: renderedDoc},
		executor,
		testLogger(),
	)

	return &materializeFixture{
		uc:        uc,
		tokenRepo: tokenRepo,
		logRepo:   logRepo,
		subCache:  subCache,
		upRepo:    upRepo,
		executor:  executor,
	}
}

func activeUser() *user.User {
	return &user.User{
		ID:           1,
		Email:        "user@example.com",
		Status:       user.StatusActive,
		TrafficQuota: 100,
		TrafficUsed:  10,
	}
}

func TestMaterializeUseCase_MalformedToken(t *testing.T) {
	f := newMaterializeFixture(activeUser())

	_, err := f.uc.Execute(context.Background(), MaterializeCommand{Token: "not-a-token"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Empty(t, f.logRepo.entries)
}

func TestMaterializeUseCase_UnknownToken(t *testing.T) {
	f := newMaterializeFixture(activeUser())
	unknown := strings.Repeat("z", 64)

	_, err := f.uc.Execute(context.Background(), MaterializeCommand{Token: unknown})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	// Nobody to attribute the attempt to.
	assert.Empty(t, f.logRepo.entries)
}

func TestMaterializeUseCase_CacheHit(t *testing.T) {
	f := newMaterializeFixture(activeUser())
	f.subCache.docs = map[string]string{testToken: renderedDoc}

	result, err := f.uc.Execute(context.Background(), MaterializeCommand{Token: testToken, ClientIP: "1.2.3.4"})
	require.NoError(t, err)
	assert.Equal(t, renderedDoc, result.Content)

	require.Len(t, f.logRepo.entries, 1)
	assert.Equal(t, subscription.AccessSuccess, f.logRepo.entries[0].Result)
	assert.Equal(t, uint(1), f.logRepo.entries[0].UserID)
}

func TestMaterializeUseCase_DisabledAccount(t *testing.T) {
	u := activeUser()
	u.Status = user.StatusDisabled
	f := newMaterializeFixture(u)

	_, err := f.uc.Execute(context.Background(), MaterializeCommand{Token: testToken})
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeUnauthorized, appErr.Type)
	assert.Equal(t, []subscription.AccessResult{subscription.AccessDisabled}, f.logRepo.results())
}

func TestMaterializeUseCase_QuotaExceeded(t *testing.T) {
	u := activeUser()
	u.TrafficUsed = u.TrafficQuota
	f := newMaterializeFixture(u)

	result, err := f.uc.Execute(context.Background(), MaterializeCommand{Token: testToken})
	require.NoError(t, err)
	assert.Equal(t, clash.EmptyDocument, result.Content)
	assert.Equal(t, []subscription.AccessResult{subscription.AccessQuotaExceeded}, f.logRepo.results())
}

func TestMaterializeUseCase_NoValidEntitlement(t *testing.T) {
	f := newMaterializeFixture(activeUser())
	f.upRepo.latest = nil

	result, err := f.uc.Execute(context.Background(), MaterializeCommand{Token: testToken})
	require.NoError(t, err)
	assert.Equal(t, clash.EmptyDocument, result.Content)
	assert.Equal(t, []subscription.AccessResult{subscription.AccessExpired}, f.logRepo.results())
}

func TestMaterializeUseCase_RendersAndCaches(t *testing.T) {
	f := newMaterializeFixture(activeUser())

	result, err := f.uc.Execute(context.Background(), MaterializeCommand{Token: testToken, UserAgent: "clash-verge"})
	require.NoError(t, err)
	assert.Equal(t, renderedDoc, result.Content)

	assert.Equal(t, renderedDoc, f.subCache.docs[testToken])
	assert.Equal(t, []uint{7}, f.tokenRepo.touched)

	require.Len(t, f.logRepo.entries, 1)
	entry := f.logRepo.entries[0]
	assert.Equal(t, subscription.AccessSuccess, entry.Result)
	assert.Equal(t, "clash-verge", entry.UserAgent)
}
