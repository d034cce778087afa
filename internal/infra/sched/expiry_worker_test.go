package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports"
	"isp-subscription-billing/internal/usecase"
)

type stubSubUC struct {
	usecase.SubscriptionUseCase
	reconciled atomic.Int64
}

func (s *stubSubUC) ReconcileStatuses(ctx context.Context) (int64, error) {
	s.reconciled.Add(1)
	return 2, nil
}

type stubStatsUC struct {
	snapshots atomic.Int64
}

func (s *stubStatsUC) Snapshot(ctx context.Context, now time.Time) (*usecase.SubscriptionMetrics, error) {
	s.snapshots.Add(1)
	return &usecase.SubscriptionMetrics{TotalRevenue: 9000}, nil
}

func (s *stubStatsUC) StatusCounts(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error) {
	return map[model.SubscriptionStatus]int{model.SubscriptionStatusActive: 2}, nil
}

func TestExpiryWorkerTicksAndStops(t *testing.T) {
	sub := &stubSubUC{}
	stats := &stubStatsUC{}
	logger := zerolog.Nop()
	w := NewExpiryWorker(10*time.Millisecond, sub, stats, ports.SystemClock{}, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got: %v", err)
	}

	if sub.reconciled.Load() == 0 {
		t.Error("expected at least one reconciliation tick")
	}
	if stats.snapshots.Load() == 0 {
		t.Error("expected at least one metrics snapshot")
	}
}
