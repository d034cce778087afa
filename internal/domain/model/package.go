package model

import (
	"time"

	"isp-subscription-billing/internal/domain"
)

// Package is a priced service tier with a fixed validity period in days.
// Packages are immutable reference data: every create/renew resolves price
// and validity from the package row at the time of that operation.
type Package struct {
	ID           string // UUID
	Name         string
	Price        int64 // minor currency units, integer to avoid float errors
	ValidityDays int
	CreatedAt    time.Time
}

func (p *Package) IsZero() bool { return p == nil || p.ID == "" }

// Validity returns the package validity as a duration.
func (p *Package) Validity() time.Duration {
	return time.Duration(p.ValidityDays) * 24 * time.Hour
}

// NewPackage validates and constructs a package.
func NewPackage(id, name string, price int64, validityDays int, now time.Time) (*Package, error) {
	if id == "" || name == "" || price <= 0 || validityDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Package{
		ID:           id,
		Name:         name,
		Price:        price,
		ValidityDays: validityDays,
		CreatedAt:    now,
	}, nil
}
