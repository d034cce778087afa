package ports

import "time"

// Clock supplies the current instant. Temporal logic (renewal windows,
// metrics snapshots, expiry checks) always goes through an injected Clock so
// it can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
