package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports/repository"
)

var _ repository.RenewalRepository = (*renewalRepo)(nil)

// renewalRepo persists the immutable renewal history: insert and read only.
type renewalRepo struct{ pool *pgxpool.Pool }

func NewRenewalRepo(pool *pgxpool.Pool) *renewalRepo {
	return &renewalRepo{pool: pool}
}

func (r *renewalRepo) Insert(ctx context.Context, tx repository.Tx, rn *model.Renewal) error {
	const q = `
INSERT INTO renewals (id, subscription_id, user_id, old_subscription_id, amount, old_amount, renewal_date)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	_, err := execSQL(ctx, r.pool, tx, q, rn.ID, rn.SubscriptionID, rn.UserID, rn.OldSubscriptionID, rn.Amount, rn.OldAmount, rn.RenewalDate)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *renewalRepo) ListBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.Renewal, error) {
	const q = `
SELECT id, subscription_id, user_id, old_subscription_id, amount, old_amount, renewal_date
  FROM renewals
 WHERE subscription_id=$1
 ORDER BY renewal_date ASC;`

	rows, err := queryRows(ctx, r.pool, tx, q, subscriptionID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Renewal
	for rows.Next() {
		rn := &model.Renewal{}
		if err := rows.Scan(&rn.ID, &rn.SubscriptionID, &rn.UserID, &rn.OldSubscriptionID, &rn.Amount, &rn.OldAmount, &rn.RenewalDate); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rn)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
