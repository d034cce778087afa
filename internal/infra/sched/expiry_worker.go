package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"isp-subscription-billing/internal/domain/ports"
	"isp-subscription-billing/internal/infra/metrics"
	"isp-subscription-billing/internal/usecase"
)

// ExpiryWorker periodically reconciles the persisted status column with the
// date columns and refreshes the prometheus gauges. Natural expiry needs no
// other mutation; this loop is what bounds the drift between the stored
// status and the derived one.
type ExpiryWorker struct {
	interval time.Duration
	subUC    usecase.SubscriptionUseCase
	statsUC  usecase.StatsUseCase
	clock    ports.Clock
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, subUC usecase.SubscriptionUseCase, statsUC usecase.StatsUseCase, clock ports.Clock, logger *zerolog.Logger) *ExpiryWorker {
	wLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		subUC:    subUC,
		statsUC:  statsUC,
		clock:    clock,
		log:      &wLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	expired, err := w.subUC.ReconcileStatuses(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("status reconciliation failed")
		return
	}
	if expired > 0 {
		metrics.IncSubscriptionsExpired(expired)
		w.log.Info().Int64("count", expired).Msg("subscriptions marked expired")
	}

	now := w.clock.Now()
	if counts, err := w.statsUC.StatusCounts(ctx, now); err == nil {
		metrics.SetSubscriptionsTotal(counts)
	} else {
		w.log.Error().Err(err).Msg("status counts failed")
	}
	if snap, err := w.statsUC.Snapshot(ctx, now); err == nil {
		metrics.SetRevenueRunRate(snap.TotalRevenue)
	} else {
		w.log.Error().Err(err).Msg("metrics snapshot failed")
	}
}
