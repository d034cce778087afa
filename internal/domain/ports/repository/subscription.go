package repository

import (
	"context"
	"time"

	"isp-subscription-billing/internal/domain/model"
)

type SubscriptionRepository interface {
	Insert(ctx context.Context, tx Tx, s *model.Subscription) error
	// FindByID locks the row for the duration of the transaction when called
	// with a live Tx, serializing concurrent renew/update/extend/delete on
	// the same subscription id.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	Update(ctx context.Context, tx Tx, s *model.Subscription) error
	Delete(ctx context.Context, tx Tx, id string) error
	List(ctx context.Context, tx Tx) ([]*model.Subscription, error)

	// Metrics reads. Callers that need snapshot consistency run these inside
	// one repeatable-read transaction; all three derive from expiry_date,
	// never from the persisted status column.
	CountActiveUsers(ctx context.Context, tx Tx, now time.Time) (int, error)
	ActiveRunRate(ctx context.Context, tx Tx, now time.Time) (int64, error)
	MonthlyRevenue(ctx context.Context, tx Tx, now time.Time) (int64, error)
	CountByDerivedStatus(ctx context.Context, tx Tx, now time.Time) (map[model.SubscriptionStatus]int, error)

	// Status reconciliation for the expiry worker. Both recompute the
	// persisted status column from the date columns.
	MarkExpired(ctx context.Context, tx Tx, now time.Time) (int64, error)
	ActivateDue(ctx context.Context, tx Tx, now time.Time) (int64, error)
}
