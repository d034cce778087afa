package model

import "time"

// Renewal is an immutable history row recording one paid renewal event:
// which subscription was renewed, at what price, and what the previous
// package cost. Rows only accumulate; they are never updated or deleted.
type Renewal struct {
	ID                string // ULID
	SubscriptionID    string // UUID
	UserID            string // UUID
	OldSubscriptionID string // UUID; equals SubscriptionID while identity is preserved
	Amount            int64  // new package price at renewal time
	OldAmount         int64  // previous package price at renewal time
	RenewalDate       time.Time
}

// RenewalWindow is the recomputed service period produced by ComputeRenewal.
type RenewalWindow struct {
	Start  time.Time
	Expiry time.Time
}

// ComputeRenewal derives the new service window for a renewal.
//
// If the current expiry is still in the future the unused days are rolled
// over: the new period starts at the old expiry, never at "now". A lapsed
// subscription (expiry <= now, equality counts as lapsed) starts fresh from
// now. In both cases the window length is exactly the package validity.
//
// Pure function; both the renew-before-lapse and renew-after-lapse paths go
// through here so callers carry no date branching of their own.
func ComputeRenewal(now, currentExpiry time.Time, validityDays int) RenewalWindow {
	start := now
	if currentExpiry.After(now) {
		start = currentExpiry
	}
	return RenewalWindow{
		Start:  start,
		Expiry: start.Add(time.Duration(validityDays) * 24 * time.Hour),
	}
}
