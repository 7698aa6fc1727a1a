package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
	"veil/internal/infrastructure/persistence/models"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.UserModel{},
		&models.UserPackageModel{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, repo *UserRepository, email, referralCode string) *user.User {
	u, err := user.NewUser(email, "hashed-password", referralCode, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, repo, "alice@example.com", "ALICE123")
	assert.NotZero(t, u.ID)

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)
	assert.Equal(t, user.StatusActive, found.Status)

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byCode, err := repo.FindByReferralCode(ctx, "ALICE123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byCode.ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())

	createTestUser(t, repo, "dup@example.com", "AAAA1111")

	u, err := user.NewUser("dup@example.com", "hash", "BBBB2222", nil)
	require.NoError(t, err)
	err = repo.Create(context.Background(), u)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())

	_, err := repo.FindByID(context.Background(), 999)
	assert.True(t, apperrors.IsNotFoundError(err))

	err = repo.AdjustBalance(context.Background(), 999, 100)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestUserRepository_AdjustBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, repo, "alice@example.com", "ALICE123")

	require.NoError(t, repo.AdjustBalance(ctx, u.ID, 500))
	require.NoError(t, repo.AdjustBalance(ctx, u.ID, -200))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), found.Balance)
}

func TestUserRepository_TrafficAccounting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, repo, "alice@example.com", "ALICE123")

	require.NoError(t, repo.AdjustTrafficQuota(ctx, u.ID, 1000))
	require.NoError(t, repo.AddTrafficUsed(ctx, u.ID, 250))
	require.NoError(t, repo.AddTrafficUsed(ctx, u.ID, 250))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), found.TrafficQuota)
	assert.Equal(t, int64(500), found.TrafficUsed)
	assert.True(t, found.HasTraffic())
}

func TestUserRepository_ListActiveSubscribers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	upRepo := NewUserPackageRepository(db, testLogger())
	ctx := context.Background()
	now := time.Now()

	entitled := createTestUser(t, repo, "entitled@example.com", "AAAA1111")
	require.NoError(t, repo.AdjustTrafficQuota(ctx, entitled.ID, 1000))
	require.NoError(t, upRepo.Create(ctx, &subscription.UserPackage{
		UserID:       entitled.ID,
		PackageID:    1,
		TrafficQuota: 1000,
		ExpiresAt:    now.Add(24 * time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}))

	expired := createTestUser(t, repo, "expired@example.com", "BBBB2222")
	require.NoError(t, repo.AdjustTrafficQuota(ctx, expired.ID, 1000))
	require.NoError(t, upRepo.Create(ctx, &subscription.UserPackage{
		UserID:       expired.ID,
		PackageID:    1,
		TrafficQuota: 1000,
		ExpiresAt:    now.Add(-time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}))

	exhausted := createTestUser(t, repo, "exhausted@example.com", "CCCC3333")
	require.NoError(t, repo.AdjustTrafficQuota(ctx, exhausted.ID, 1000))
	require.NoError(t, repo.AddTrafficUsed(ctx, exhausted.ID, 1000))
	require.NoError(t, upRepo.Create(ctx, &subscription.UserPackage{
		UserID:       exhausted.ID,
		PackageID:    1,
		TrafficQuota: 1000,
		ExpiresAt:    now.Add(24 * time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}))

	// User-level quota remains but the only entitlement is spent.
	spent := createTestUser(t, repo, "spent@example.com", "EEEE5555")
	require.NoError(t, repo.AdjustTrafficQuota(ctx, spent.ID, 1000))
	require.NoError(t, upRepo.Create(ctx, &subscription.UserPackage{
		UserID:       spent.ID,
		PackageID:    1,
		TrafficQuota: 500,
		TrafficUsed:  500,
		ExpiresAt:    now.Add(24 * time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}))

	disabled := createTestUser(t, repo, "disabled@example.com", "DDDD4444")
	require.NoError(t, repo.AdjustTrafficQuota(ctx, disabled.ID, 1000))
	require.NoError(t, upRepo.Create(ctx, &subscription.UserPackage{
		UserID:       disabled.ID,
		PackageID:    1,
		TrafficQuota: 1000,
		ExpiresAt:    now.Add(24 * time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}))
	require.NoError(t, repo.UpdateStatus(ctx, disabled.ID, user.StatusDisabled))

	subscribers, err := repo.ListActiveSubscribers(ctx, now)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, entitled.ID, subscribers[0].ID)
}

func TestUserPackageRepository_LatestValid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	upRepo := NewUserPackageRepository(db, testLogger())
	ctx := context.Background()
	now := time.Now()

	u := createTestUser(t, repo, "alice@example.com", "ALICE123")

	latest, err := upRepo.LatestValid(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Nil(t, latest, "no entitlement yet")

	require.NoError(t, upRepo.Create(ctx, &subscription.UserPackage{
		UserID:       u.ID,
		PackageID:    1,
		OrderID:      11,
		TrafficQuota: 1000,
		ExpiresAt:    now.Add(24 * time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}))
	require.NoError(t, upRepo.Create(ctx, &subscription.UserPackage{
		UserID:       u.ID,
		PackageID:    2,
		OrderID:      12,
		TrafficQuota: 2000,
		ExpiresAt:    now.Add(48 * time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}))
	// The farthest expiry is spent, so it must be skipped.
	require.NoError(t, upRepo.Create(ctx, &subscription.UserPackage{
		UserID:       u.ID,
		PackageID:    3,
		OrderID:      13,
		TrafficQuota: 500,
		TrafficUsed:  500,
		ExpiresAt:    now.Add(72 * time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}))

	latest, err = upRepo.LatestValid(ctx, u.ID, now)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, uint(2), latest.PackageID)
	assert.Equal(t, uint(12), latest.OrderID)
	assert.Equal(t, int64(2000), latest.TrafficQuota)
}

func TestUserPackageRepository_ExhaustedEntitlement(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	upRepo := NewUserPackageRepository(db, testLogger())
	ctx := context.Background()
	now := time.Now()

	u := createTestUser(t, repo, "alice@example.com", "ALICE123")

	up := &subscription.UserPackage{
		UserID:       u.ID,
		PackageID:    1,
		OrderID:      42,
		TrafficQuota: 100,
		ExpiresAt:    now.Add(24 * time.Hour),
		Status:       subscription.UserPackageStatusActive,
	}
	require.NoError(t, upRepo.Create(ctx, up))
	assert.NotZero(t, up.ID)

	valid, err := upRepo.HasValidPackage(ctx, u.ID, now)
	require.NoError(t, err)
	assert.True(t, valid)

	listed, err := upRepo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, uint(42), listed[0].OrderID)
	assert.Equal(t, int64(100), listed[0].TrafficQuota)

	// Spend the whole entitlement budget.
	require.NoError(t, db.Model(&models.UserPackageModel{}).
		Where("id = ?", up.ID).
		Update("traffic_used", 100).Error)

	valid, err = upRepo.HasValidPackage(ctx, u.ID, now)
	require.NoError(t, err)
	assert.False(t, valid, "spent entitlement no longer counts")

	latest, err := upRepo.LatestValid(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestUserRepository_TopTrafficAndTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	light := createTestUser(t, repo, "light@example.com", "AAAA1111")
	heavy := createTestUser(t, repo, "heavy@example.com", "BBBB2222")
	require.NoError(t, repo.AdjustTrafficQuota(ctx, light.ID, 1000))
	require.NoError(t, repo.AdjustTrafficQuota(ctx, heavy.ID, 1000))
	require.NoError(t, repo.AddTrafficUsed(ctx, light.ID, 10))
	require.NoError(t, repo.AddTrafficUsed(ctx, heavy.ID, 900))

	top, err := repo.TopTrafficConsumers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, heavy.ID, top[0].ID)

	quota, used, err := repo.TrafficTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), quota)
	assert.Equal(t, int64(910), used)
}
