package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

// paymentRepo writes the append-only ledger. There is no UPDATE or DELETE
// statement in this file, and that is the point.
type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

func (r *paymentRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (id, user_id, subscription_id, amount, status, method, payment_date)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.SubscriptionID, p.Amount, p.Status, p.Method, p.PaymentDate)
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

func (r *paymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	const q = `
SELECT id, user_id, subscription_id, amount, status, method, payment_date
  FROM payments
 WHERE user_id=$1
 ORDER BY payment_date DESC;`

	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p := &model.Payment{}
		var status, method string
		if err := rows.Scan(&p.ID, &p.UserID, &p.SubscriptionID, &p.Amount, &status, &method, &p.PaymentDate); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		p.Status = model.PaymentStatus(status)
		p.Method = model.PaymentMethod(method)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *paymentRepo) CountBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) (int, error) {
	const q = `SELECT COUNT(*) FROM payments WHERE subscription_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, subscriptionID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
