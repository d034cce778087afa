package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports/repository"
	"isp-subscription-billing/internal/infra/metrics"
	red "isp-subscription-billing/internal/infra/redis"
)

var _ repository.PackageRepository = (*packageRepoCacheDecorator)(nil)

// packageRepoCacheDecorator caches package reference data in Redis. Only
// packages are ever cached: subscription, payment and renewal reads always
// hit the store directly so rollover math never works from stale state.
type packageRepoCacheDecorator struct {
	inner repository.PackageRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPackageRepoCacheDecorator(inner repository.PackageRepository, cache red.RedisClient, ttl time.Duration) repository.PackageRepository {
	return &packageRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *packageRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	key := fmt.Sprintf("package:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var pkg model.Package
		if json.Unmarshal([]byte(val), &pkg) == nil {
			metrics.IncCacheRequest("package", "hit")
			return &pkg, nil
		}
	} else if err != redis.Nil {
		// Redis trouble is not a reason to fail a billing operation; fall
		// through to the store.
	}

	metrics.IncCacheRequest("package", "miss")
	pkg, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(pkg); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return pkg, nil
}

func (d *packageRepoCacheDecorator) List(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	// Listing is an admin-path operation; serve it straight from the store.
	return d.inner.List(ctx, tx)
}

// Write operations invalidate the cached entry.
func (d *packageRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, pkg *model.Package) error {
	_ = d.cache.Del(ctx, fmt.Sprintf("package:%s", pkg.ID))
	return d.inner.Save(ctx, tx, pkg)
}

func (d *packageRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	_ = d.cache.Del(ctx, fmt.Sprintf("package:%s", id))
	return d.inner.Delete(ctx, tx, id)
}
