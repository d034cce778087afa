package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeRenewal(t *testing.T) {
	t.Run("renew before lapse rolls unused days over", func(t *testing.T) {
		now := date(2025, time.January, 5)
		expiry := date(2025, time.January, 10) // 5 days of entitlement left

		win := ComputeRenewal(now, expiry, 30)

		if !win.Start.Equal(expiry) {
			t.Errorf("expected new start %v (old expiry), got %v", expiry, win.Start)
		}
		if want := date(2025, time.February, 9); !win.Expiry.Equal(want) {
			t.Errorf("expected new expiry %v, got %v", want, win.Expiry)
		}
	})

	t.Run("renew after lapse starts from now", func(t *testing.T) {
		now := date(2025, time.January, 5)
		expiry := date(2025, time.January, 1) // lapsed 4 days ago

		win := ComputeRenewal(now, expiry, 30)

		if !win.Start.Equal(now) {
			t.Errorf("expected new start %v (now), got %v", now, win.Start)
		}
		if want := date(2025, time.February, 4); !win.Expiry.Equal(want) {
			t.Errorf("expected new expiry %v, got %v", want, win.Expiry)
		}
	})

	t.Run("expiry equal to now counts as lapsed", func(t *testing.T) {
		now := date(2025, time.January, 5)

		win := ComputeRenewal(now, now, 30)

		if !win.Start.Equal(now) {
			t.Errorf("expected new start %v, got %v", now, win.Start)
		}
	})

	t.Run("window length is always exactly the validity", func(t *testing.T) {
		now := date(2025, time.June, 15)
		for _, expiry := range []time.Time{
			date(2025, time.June, 1),  // lapsed
			date(2025, time.June, 15), // boundary
			date(2025, time.July, 1),  // rollover
		} {
			for _, days := range []int{1, 7, 30, 365} {
				win := ComputeRenewal(now, expiry, days)
				if got, want := win.Expiry.Sub(win.Start), time.Duration(days)*24*time.Hour; got != want {
					t.Errorf("expiry=%v days=%d: window %v, want %v", expiry, days, got, want)
				}
			}
		}
	})
}

func TestSubscriptionDerivedStatus(t *testing.T) {
	now := date(2025, time.March, 10)
	sub := Subscription{
		StartDate:  date(2025, time.March, 1),
		ExpiryDate: date(2025, time.March, 31),
	}

	if got := sub.DerivedStatus(now); got != SubscriptionStatusActive {
		t.Errorf("expected active, got %s", got)
	}

	sub.StartDate = date(2025, time.March, 20)
	if got := sub.DerivedStatus(now); got != SubscriptionStatusPending {
		t.Errorf("expected pending before start, got %s", got)
	}

	sub.StartDate = date(2025, time.February, 1)
	sub.ExpiryDate = now // strict comparison: equality is expired
	if got := sub.DerivedStatus(now); got != SubscriptionStatusExpired {
		t.Errorf("expected expired at boundary, got %s", got)
	}
	if sub.ActiveAt(now) {
		t.Error("ActiveAt must be false when expiry == now")
	}
}

func TestNewSubscription(t *testing.T) {
	now := date(2025, time.April, 1)
	pkg, err := NewPackage("pkg-1", "Home 10Mbps", 2500, 30, now)
	if err != nil {
		t.Fatalf("NewPackage: %v", err)
	}

	s, err := NewSubscription("sub-1", "user-1", pkg, now, now)
	if err != nil {
		t.Fatalf("NewSubscription: %v", err)
	}
	if want := now.Add(30 * 24 * time.Hour); !s.ExpiryDate.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, s.ExpiryDate)
	}
	if s.Status != SubscriptionStatusActive {
		t.Errorf("expected active status, got %s", s.Status)
	}

	if _, err := NewSubscription("", "user-1", pkg, now, now); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := NewSubscription("sub-2", "user-1", nil, now, now); err == nil {
		t.Error("expected error for nil package")
	}
}
