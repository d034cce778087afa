package repository

import (
	"context"

	"isp-subscription-billing/internal/domain/model"
)

// UserRepository is read-only in this core: accounts are provisioned by the
// portal's registration flow and only referenced here.
type UserRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	List(ctx context.Context, tx Tx) ([]*model.User, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
