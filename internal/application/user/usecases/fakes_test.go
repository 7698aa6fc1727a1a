package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"veil/internal/domain/subscription"
	"veil/internal/domain/user"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeUserRepo struct {
	users map[uint]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]*user.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	u.ID = uint(len(r.users) + 1)
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NewNotFoundError("user not found")
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.NewNotFoundError("user not found")
}

func (r *fakeUserRepo) FindByReferralCode(ctx context.Context, code string) (*user.User, error) {
	for _, u := range r.users {
		if u.ReferralCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.NewNotFoundError("user not found")
}

func (r *fakeUserRepo) CountReferredBy(ctx context.Context, referrerID uint) (int64, error) {
	var count int64
	for _, u := range r.users {
		if u.ReferredBy != nil && *u.ReferredBy == referrerID {
			count++
		}
	}
	return count, nil
}

type fakeCoinRepo struct {
	transactions []*subscription.CoinTransaction
	lastPage     int
	lastPageSize int
}

func (r *fakeCoinRepo) SumByUserAndType(ctx context.Context, userID uint, txType subscription.CoinTransactionType) (int64, error) {
	var sum int64
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.Type == txType {
			sum += tx.Amount
		}
	}
	return sum, nil
}

func (r *fakeCoinRepo) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*subscription.CoinTransaction, int64, error) {
	r.lastPage = page
	r.lastPageSize = pageSize

	var matched []*subscription.CoinTransaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			matched = append(matched, tx)
		}
	}

	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type fakeVerifier struct {
	userID uint
	err    error
}

func (v *fakeVerifier) VerifyUserID(token string) (uint, error) {
	if v.err != nil {
		return 0, v.err
	}
	return v.userID, nil
}

type fakeIssuer struct {
	err    error
	issued int
}

func (i *fakeIssuer) Generate(userID uint, email string, isAdmin bool) (string, int64, error) {
	if i.err != nil {
		return "", 0, i.err
	}
	i.issued++
	return fmt.Sprintf("token-for-%d", userID), 3600, nil
}
