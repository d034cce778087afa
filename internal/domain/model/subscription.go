package model

import (
	"time"

	"isp-subscription-billing/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending SubscriptionStatus = "pending"
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// ValidStatus reports whether s is one of the known subscription statuses.
func ValidStatus(s SubscriptionStatus) bool {
	switch s {
	case SubscriptionStatusPending, SubscriptionStatusActive, SubscriptionStatusExpired:
		return true
	}
	return false
}

// Subscription is a time-bounded grant of service for a user, tied to a
// package. Identity is preserved across renewals: a renewal mutates the
// row's package/start/expiry in place, it never creates a new subscription.
//
// Status is logically derived from ExpiryDate but also persisted for query
// convenience; DerivedStatus is the authority whenever the two could differ.
type Subscription struct {
	ID         string // UUID
	UserID     string // UUID
	PackageID  string // UUID
	StartDate  time.Time
	ExpiryDate time.Time
	Status     SubscriptionStatus
	CreatedAt  time.Time
}

// ActiveAt reports whether the subscription still carries entitlement at the
// given instant. The comparison is strict: expiry == now counts as lapsed.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.ExpiryDate.After(now)
}

// DerivedStatus recomputes the status from the date columns at the given
// instant.
func (s *Subscription) DerivedStatus(now time.Time) SubscriptionStatus {
	if !s.ExpiryDate.After(now) {
		return SubscriptionStatusExpired
	}
	if s.StartDate.After(now) {
		return SubscriptionStatusPending
	}
	return SubscriptionStatusActive
}

// NewSubscription constructs a fresh grant: expiry = start + validity, no
// rollover (rollover only applies to renewals of an existing subscription).
func NewSubscription(id, userID string, pkg *Package, start, now time.Time) (*Subscription, error) {
	if id == "" || userID == "" || pkg.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	s := &Subscription{
		ID:         id,
		UserID:     userID,
		PackageID:  pkg.ID,
		StartDate:  start,
		ExpiryDate: start.Add(pkg.Validity()),
		CreatedAt:  now,
	}
	s.Status = s.DerivedStatus(now)
	return s, nil
}
