package model

import "time"

// User is an ISP customer account. Accounts are provisioned by the portal's
// registration flow; the billing core only references them and never mutates
// them.
type User struct {
	ID        string // UUID
	Name      string
	Phone     string
	Active    bool
	CreatedAt time.Time
}
