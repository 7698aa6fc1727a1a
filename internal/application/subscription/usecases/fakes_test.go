package usecases

import (
	"context"
	"io"
	"log/slog"
	"time"

	"veil/internal/domain/node"
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

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NewNotFoundError("user not found")
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByIDForUpdate(ctx context.Context, id uint) (*user.User, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) AdjustBalance(ctx context.Context, id uint, delta int64) error {
	u, ok := r.users[id]
	if !ok {
		return errors.NewNotFoundError("user not found")
	}
	u.Balance += delta
	return nil
}

func (r *fakeUserRepo) AdjustTrafficQuota(ctx context.Context, id uint, delta int64) error {
	u, ok := r.users[id]
	if !ok {
		return errors.NewNotFoundError("user not found")
	}
	u.TrafficQuota += delta
	return nil
}

type fakePackageRepo struct {
	packages map[uint]*subscription.Package
}

func (r *fakePackageRepo) FindByID(ctx context.Context, id uint) (*subscription.Package, error) {
	pkg, ok := r.packages[id]
	if !ok {
		return nil, errors.NewNotFoundError("package not found")
	}
	return pkg, nil
}

func (r *fakePackageRepo) ListActive(ctx context.Context) ([]*subscription.Package, error) {
	var out []*subscription.Package
	for _, pkg := range r.packages {
		if pkg.IsActive {
			out = append(out, pkg)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	orders []*subscription.Order
	nextID uint
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *subscription.Order) error {
	r.nextID++
	order.ID = r.nextID
	r.orders = append(r.orders, order)
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uint, status subscription.OrderStatus) error {
	for _, o := range r.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return errors.NewNotFoundError("order not found")
}

func (r *fakeOrderRepo) MarkCompleted(ctx context.Context, id uint, completedAt time.Time) error {
	for _, o := range r.orders {
		if o.ID == id {
			o.Status = subscription.OrderStatusCompleted
			at := completedAt
			o.CompletedAt = &at
			return nil
		}
	}
	return errors.NewNotFoundError("order not found")
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uint) (*subscription.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errors.NewNotFoundError("order not found")
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*subscription.Order, int64, error) {
	var out []*subscription.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) CountCompletedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, o := range r.orders {
		if o.UserID == userID && o.Status == subscription.OrderStatusCompleted {
			count++
		}
	}
	return count, nil
}

type fakeUserPackageRepo struct {
	created []*subscription.UserPackage
	latest  *subscription.UserPackage
}

func (r *fakeUserPackageRepo) Create(ctx context.Context, up *subscription.UserPackage) error {
	r.created = append(r.created, up)
	return nil
}

func (r *fakeUserPackageRepo) LatestValid(ctx context.Context, userID uint, now time.Time) (*subscription.UserPackage, error) {
	return r.latest, nil
}

type fakeCoinRepo struct {
	transactions []*subscription.CoinTransaction
}

func (r *fakeCoinRepo) Create(ctx context.Context, tx *subscription.CoinTransaction) error {
	r.transactions = append(r.transactions, tx)
	return nil
}

type fakeTokenRepo struct {
	tokens  map[string]*subscription.Token
	touched []uint
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *subscription.Token) error {
	if r.tokens == nil {
		r.tokens = make(map[string]*subscription.Token)
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeTokenRepo) FindByToken(ctx context.Context, tokenStr string) (*subscription.Token, error) {
	t, ok := r.tokens[tokenStr]
	if !ok {
		return nil, errors.NewNotFoundError("token not found")
	}
	return t, nil
}

func (r *fakeTokenRepo) FindByUserID(ctx context.Context, userID uint) (*subscription.Token, error) {
	for _, t := range r.tokens {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, errors.NewNotFoundError("token not found")
}

func (r *fakeTokenRepo) TouchLastAccessed(ctx context.Context, id uint, at time.Time) error {
	r.touched = append(r.touched, id)
	return nil
}

type fakeLogRepo struct {
	entries []*subscription.AccessLog
}

func (r *fakeLogRepo) Create(ctx context.Context, entry *subscription.AccessLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLogRepo) results() []subscription.AccessResult {
	out := make([]subscription.AccessResult, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Result)
	}
	return out
}

type fakeNodeRepo struct {
	nodes []*node.Node
}

func (r *fakeNodeRepo) ListClashNodes(ctx context.Context) ([]*node.Node, error) {
	return r.nodes, nil
}

type fakeClashRepo struct {
	groups []*subscription.ClashProxyGroup
	rules  []*subscription.ClashRule
}

func (r *fakeClashRepo) ListProxyGroups(ctx context.Context) ([]*subscription.ClashProxyGroup, error) {
	return r.groups, nil
}

func (r *fakeClashRepo) ListActiveRules(ctx context.Context) ([]*subscription.ClashRule, error) {
	return r.rules, nil
}

type fakePkgCache struct {
	invalidated []uint
}

func (c *fakePkgCache) Invalidate(ctx context.Context, userID uint) error {
	c.invalidated = append(c.invalidated, userID)
	return nil
}

type fakeSubCache struct {
	docs map[string]string
}

func (c *fakeSubCache) Get(ctx context.Context, token string) (string, error) {
	return c.docs[token], nil
}

func (c *fakeSubCache) Set(ctx context.Context, token, content string) error {
	if c.docs == nil {
		c.docs = make(map[string]string)
	}
	c.docs[token] = content
	return nil
}

func (c *fakeSubCache) Invalidate(ctx context.Context, token string) error {
	delete(c.docs, token)
	return nil
}

type fakeRenderer struct {
	output string
	nodes  []*node.Node
	groups []*subscription.ClashProxyGroup
	rules  []*subscription.ClashRule
}

func (r *fakeRenderer) Render(nodes []*node.Node, groups []*subscription.ClashProxyGroup, rules []*subscription.ClashRule) (string, error) {
	r.nodes = nodes
	r.groups = groups
	r.rules = rules
	return r.output, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// syncExecutor runs submitted tasks inline so tests can assert on their
// effects without sleeping.
type syncExecutor struct {
	names []string
}

func (e *syncExecutor) Submit(name string, fn func()) bool {
	e.names = append(e.names, name)
	fn()
	return true
}
