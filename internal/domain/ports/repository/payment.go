package repository

import (
	"context"

	"isp-subscription-billing/internal/domain/model"
)

// PaymentRepository is the append-only ledger. There is deliberately no
// update or delete: money already recorded stays recorded, even when the
// subscription it pointed at is hard-deleted later.
type PaymentRepository interface {
	Insert(ctx context.Context, tx Tx, p *model.Payment) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Payment, error)
	CountBySubscription(ctx context.Context, tx Tx, subscriptionID string) (int, error)
}
