package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Insert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (id, user_id, package_id, start_date, expiry_date, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.UserID, s.PackageID, s.StartDate, s.ExpiryDate, s.Status, s.CreatedAt)
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

// FindByID reads the subscription; inside a transaction the row is locked
// with FOR UPDATE so concurrent renew/update/extend/delete on the same id
// serialize on it for the duration of the read-compute-write sequence.
func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	q := `SELECT id, user_id, package_id, start_date, expiry_date, status, created_at FROM subscriptions WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) Update(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
UPDATE subscriptions
   SET package_id=$2, start_date=$3, expiry_date=$4, status=$5
 WHERE id=$1;`

	tag, err := execSQL(ctx, r.pool, tx, q, s.ID, s.PackageID, s.StartDate, s.ExpiryDate, s.Status)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM subscriptions WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	const q = `
SELECT id, user_id, package_id, start_date, expiry_date, status, created_at
  FROM subscriptions
 ORDER BY created_at DESC;`

	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *subscriptionRepo) CountActiveUsers(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `SELECT COUNT(DISTINCT user_id) FROM subscriptions WHERE expiry_date > $1;`
	row, err := pickRow(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *subscriptionRepo) ActiveRunRate(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `
SELECT COALESCE(SUM(p.price),0)
  FROM subscriptions s
  JOIN packages p ON p.id = s.package_id
 WHERE s.expiry_date > $1;`

	row, err := pickRow(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *subscriptionRepo) MonthlyRevenue(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `
SELECT COALESCE(SUM(p.price),0)
  FROM subscriptions s
  JOIN packages p ON p.id = s.package_id
 WHERE DATE_TRUNC('month', s.created_at) = DATE_TRUNC('month', $1::timestamptz);`

	row, err := pickRow(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *subscriptionRepo) CountByDerivedStatus(ctx context.Context, tx repository.Tx, now time.Time) (map[model.SubscriptionStatus]int, error) {
	const q = `
SELECT CASE
         WHEN expiry_date <= $1 THEN 'expired'
         WHEN start_date > $1 THEN 'pending'
         ELSE 'active'
       END AS st, COUNT(*)
  FROM subscriptions
 GROUP BY st;`

	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	counts := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.SubscriptionStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func (r *subscriptionRepo) MarkExpired(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `UPDATE subscriptions SET status='expired' WHERE expiry_date <= $1 AND status <> 'expired';`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return tag.RowsAffected(), nil
}

func (r *subscriptionRepo) ActivateDue(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `UPDATE subscriptions SET status='active' WHERE status='pending' AND start_date <= $1 AND expiry_date > $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return tag.RowsAffected(), nil
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var status string
	if err := row.Scan(&s.ID, &s.UserID, &s.PackageID, &s.StartDate, &s.ExpiryDate, &status, &s.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.Status = model.SubscriptionStatus(status)
	return s, nil
}
