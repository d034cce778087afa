package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fixedClock pins "now" for deterministic renewal and metrics tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock { return &fixedClock{now: now} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockTxManager serializes callbacks with a mutex, modelling the row-level
// locking the Postgres TxManager provides: two transactions touching the
// same store never interleave.
type mockTxManager struct {
	mu       sync.Mutex
	beginErr error
}

func newMockTxManager() *mockTxManager { return &mockTxManager{} }

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, repository.NoTX)
}

// --- in-memory repositories ---

type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) add(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) List(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.User, 0, len(m.store))
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

type memPackageRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Package
}

func newMemPackageRepo() *memPackageRepo {
	return &memPackageRepo{store: make(map[string]*model.Package)}
}

func (m *memPackageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPackageRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Package, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPackageRepo) Save(ctx context.Context, tx repository.Tx, pkg *model.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pkg
	m.store[pkg.ID] = &cp
	return nil
}

func (m *memPackageRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

type memSubscriptionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription
	pkgs  *memPackageRepo // price lookups for the revenue queries

	InsertFunc func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	UpdateFunc func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
}

func newMemSubscriptionRepo(pkgs *memPackageRepo) *memSubscriptionRepo {
	return &memSubscriptionRepo{store: make(map[string]*model.Subscription), pkgs: pkgs}
}

func (m *memSubscriptionRepo) Insert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[s.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptionRepo) Update(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSubscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *memSubscriptionRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Subscription, 0, len(m.store))
	for _, s := range m.store {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memSubscriptionRepo) CountActiveUsers(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make(map[string]struct{})
	for _, s := range m.store {
		if s.ExpiryDate.After(now) {
			users[s.UserID] = struct{}{}
		}
	}
	return len(users), nil
}

func (m *memSubscriptionRepo) ActiveRunRate(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, s := range m.store {
		if !s.ExpiryDate.After(now) {
			continue
		}
		if p, err := m.pkgs.FindByID(ctx, tx, s.PackageID); err == nil {
			sum += p.Price
		}
	}
	return sum, nil
}

func (m *memSubscriptionRepo) MonthlyRevenue(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, s := range m.store {
		if s.CreatedAt.Year() != now.Year() || s.CreatedAt.Month() != now.Month() {
			continue
		}
		if p, err := m.pkgs.FindByID(ctx, tx, s.PackageID); err == nil {
			sum += p.Price
		}
	}
	return sum, nil
}

func (m *memSubscriptionRepo) CountByDerivedStatus(ctx context.Context, tx repository.Tx, now time.Time) (map[model.SubscriptionStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[model.SubscriptionStatus]int)
	for _, s := range m.store {
		counts[s.DerivedStatus(now)]++
	}
	return counts, nil
}

func (m *memSubscriptionRepo) MarkExpired(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.store {
		if !s.ExpiryDate.After(now) && s.Status != model.SubscriptionStatusExpired {
			s.Status = model.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *memSubscriptionRepo) ActivateDue(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusPending && !s.StartDate.After(now) && s.ExpiryDate.After(now) {
			s.Status = model.SubscriptionStatusActive
			n++
		}
	}
	return n, nil
}

type memPaymentRepo struct {
	mu         sync.RWMutex
	rows       []*model.Payment
	InsertFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

func newMemPaymentRepo() *memPaymentRepo { return &memPaymentRepo{} }

func (m *memPaymentRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.rows {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPaymentRepo) CountBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.rows {
		if p.SubscriptionID == subscriptionID {
			n++
		}
	}
	return n, nil
}

func (m *memPaymentRepo) all() []*model.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Payment, len(m.rows))
	copy(out, m.rows)
	return out
}

type memRenewalRepo struct {
	mu   sync.RWMutex
	rows []*model.Renewal
}

func newMemRenewalRepo() *memRenewalRepo { return &memRenewalRepo{} }

func (m *memRenewalRepo) Insert(ctx context.Context, tx repository.Tx, r *model.Renewal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memRenewalRepo) ListBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.Renewal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Renewal
	for _, r := range m.rows {
		if r.SubscriptionID == subscriptionID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
