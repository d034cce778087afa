package repository

import (
	"context"

	"isp-subscription-billing/internal/domain/model"
)

type PackageRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Package, error)
	List(ctx context.Context, tx Tx) ([]*model.Package, error)
	Save(ctx context.Context, tx Tx, pkg *model.Package) error
	Delete(ctx context.Context, tx Tx, id string) error
}
