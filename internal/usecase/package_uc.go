package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports"
	"isp-subscription-billing/internal/domain/ports/repository"
)

// PackageUseCase manages the priced service tiers. Price changes never
// rewrite historical ledger rows: payments carry the price resolved at the
// time they were recorded.
type PackageUseCase interface {
	Create(ctx context.Context, name string, price int64, validityDays int) (*model.Package, error)
	Update(ctx context.Context, id, name string, price int64, validityDays int) (*model.Package, error)
	Get(ctx context.Context, id string) (*model.Package, error)
	List(ctx context.Context) ([]*model.Package, error)
	Delete(ctx context.Context, id string) error
}

// Compile-time check
var _ PackageUseCase = (*packageUC)(nil)

type packageUC struct {
	packages repository.PackageRepository
	clock    ports.Clock
	log      *zerolog.Logger
}

func NewPackageUseCase(packages repository.PackageRepository, clock ports.Clock, logger *zerolog.Logger) *packageUC {
	pkgLog := logger.With().Str("component", "PackageUC").Logger()
	return &packageUC{packages: packages, clock: clock, log: &pkgLog}
}

func (uc *packageUC) Create(ctx context.Context, name string, price int64, validityDays int) (*model.Package, error) {
	pkg, err := model.NewPackage(uuid.NewString(), name, price, validityDays, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.packages.Save(ctx, repository.NoTX, pkg); err != nil {
		return nil, err
	}
	uc.log.Info().Str("package_id", pkg.ID).Str("name", name).Msg("package created")
	return pkg, nil
}

func (uc *packageUC) Update(ctx context.Context, id, name string, price int64, validityDays int) (*model.Package, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	existing, err := uc.packages.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	pkg, err := model.NewPackage(existing.ID, name, price, validityDays, existing.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := uc.packages.Save(ctx, repository.NoTX, pkg); err != nil {
		return nil, err
	}
	uc.log.Info().Str("package_id", id).Msg("package updated")
	return pkg, nil
}

func (uc *packageUC) Get(ctx context.Context, id string) (*model.Package, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.packages.FindByID(ctx, repository.NoTX, id)
}

func (uc *packageUC) List(ctx context.Context) ([]*model.Package, error) {
	return uc.packages.List(ctx, repository.NoTX)
}

func (uc *packageUC) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.packages.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	uc.log.Info().Str("package_id", id).Msg("package deleted")
	return nil
}
