package repository

import (
	"context"

	"isp-subscription-billing/internal/domain/model"
)

// RenewalRepository records renewal history. Rows only accumulate.
type RenewalRepository interface {
	Insert(ctx context.Context, tx Tx, r *model.Renewal) error
	ListBySubscription(ctx context.Context, tx Tx, subscriptionID string) ([]*model.Renewal, error)
}
