package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports/repository"
)

// SubscriptionMetrics is a point-in-time snapshot of the business figures
// shown on the admin dashboard.
type SubscriptionMetrics struct {
	ActiveCount    int   // distinct users with entitlement at the instant
	TotalRevenue   int64 // run-rate: current package price over live subscriptions
	MonthlyRevenue int64 // package price over subscriptions created this calendar month
}

// StatsUseCase computes metrics snapshots from a single consistent read.
type StatsUseCase interface {
	Snapshot(ctx context.Context, now time.Time) (*SubscriptionMetrics, error)
	StatusCounts(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error)
}

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type statsUC struct {
	subs repository.SubscriptionRepository
	tm   repository.TransactionManager

	log *zerolog.Logger
}

func NewStatsUseCase(subs repository.SubscriptionRepository, tm repository.TransactionManager, logger *zerolog.Logger) *statsUC {
	statsLog := logger.With().Str("component", "StatsUC").Logger()
	return &statsUC{subs: subs, tm: tm, log: &statsLog}
}

// Snapshot evaluates all three figures inside one repeatable-read, read-only
// transaction: a concurrent write cannot make ActiveCount and TotalRevenue
// reflect different moments. Every figure is derived from expiry_date
// against the same `now`, never from the persisted status column.
func (s *statsUC) Snapshot(ctx context.Context, now time.Time) (*SubscriptionMetrics, error) {
	var m SubscriptionMetrics
	txOpt := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := s.tm.WithTx(ctx, txOpt, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if m.ActiveCount, err = s.subs.CountActiveUsers(ctx, tx, now); err != nil {
			return err
		}
		if m.TotalRevenue, err = s.subs.ActiveRunRate(ctx, tx, now); err != nil {
			return err
		}
		m.MonthlyRevenue, err = s.subs.MonthlyRevenue(ctx, tx, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// StatusCounts groups subscriptions by status derived from the date columns
// at the given instant.
func (s *statsUC) StatusCounts(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error) {
	return s.subs.CountByDerivedStatus(ctx, repository.NoTX, now)
}
