package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports/repository"
)

var _ repository.PackageRepository = (*packageRepo)(nil)

type packageRepo struct{ pool *pgxpool.Pool }

func NewPackageRepo(pool *pgxpool.Pool) *packageRepo {
	return &packageRepo{pool: pool}
}

func (r *packageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	const q = `SELECT id, name, price, validity_days, created_at FROM packages WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	p := &model.Package{}
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.ValidityDays, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *packageRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	const q = `SELECT id, name, price, validity_days, created_at FROM packages ORDER BY price ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Package
	for rows.Next() {
		p := &model.Package{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ValidityDays, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *packageRepo) Save(ctx context.Context, tx repository.Tx, pkg *model.Package) error {
	const q = `
INSERT INTO packages (id, name, price, validity_days, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET name=$2, price=$3, validity_days=$4;`

	_, err := execSQL(ctx, r.pool, tx, q, pkg.ID, pkg.Name, pkg.Price, pkg.ValidityDays, pkg.CreatedAt)
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

func (r *packageRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM packages WHERE id=$1;`
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
