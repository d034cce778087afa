package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/usecase"
)

func TestPackageUC(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemPackageRepo()
	uc := usecase.NewPackageUseCase(repo, newFixedClock(now), newTestLogger())

	t.Run("create validates price and validity", func(t *testing.T) {
		pkg, err := uc.Create(ctx, "Home 10Mbps", 2500, 30)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if pkg.ID == "" || pkg.ValidityDays != 30 {
			t.Errorf("unexpected package: %+v", pkg)
		}

		if _, err := uc.Create(ctx, "Free", 0, 30); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("zero price: expected ErrInvalidArgument, got: %v", err)
		}
		if _, err := uc.Create(ctx, "Zero days", 100, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("zero validity: expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("update keeps identity and creation time", func(t *testing.T) {
		pkg, err := uc.Create(ctx, "Home 50Mbps", 6000, 30)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		updated, err := uc.Update(ctx, pkg.ID, "Home 50Mbps", 6500, 30)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.ID != pkg.ID || !updated.CreatedAt.Equal(pkg.CreatedAt) {
			t.Errorf("update must not change identity: %+v", updated)
		}
		if updated.Price != 6500 {
			t.Errorf("expected price 6500, got %d", updated.Price)
		}
	})

	t.Run("get and delete unknown ids return NotFound", func(t *testing.T) {
		if _, err := uc.Get(ctx, "pkg-ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("get: expected ErrNotFound, got: %v", err)
		}
		if err := uc.Delete(ctx, "pkg-ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("delete: expected ErrNotFound, got: %v", err)
		}
	})
}
