package application

import (
	"context"
	"errors"
	"time"

	"atrium/contexts/identity-access/tenancy-service/domain/entities"
	domainerrors "atrium/contexts/identity-access/tenancy-service/domain/errors"
	"atrium/contexts/identity-access/tenancy-service/ports"
)

// TenantLookup is the read side the resolver depends on.
type TenantLookup interface {
	FindByRoutingKey(ctx context.Context, routingKey string) (entities.Tenant, error)
}

// CachedCatalog fronts the catalog store with a short-TTL cache. The
// lookup runs on every inbound request, so both found and not-found
// answers are memoized. Cache failures degrade to a direct catalog
// read; catalog failures propagate so the caller fails closed.
type CachedCatalog struct {
	Catalog ports.Catalog
	Cache   ports.CatalogCache
	TTL     time.Duration
}

func (c CachedCatalog) FindByRoutingKey(ctx context.Context, routingKey string) (entities.Tenant, error) {
	if c.Cache != nil {
		if lookup, ok, err := c.Cache.Get(ctx, routingKey); err == nil && ok {
			if !lookup.Found {
				return entities.Tenant{}, domainerrors.ErrTenantNotFound
			}
			return lookup.Tenant, nil
		}
	}

	tenant, err := c.Catalog.FindByRoutingKey(ctx, routingKey)
	switch {
	case err == nil:
		c.memoize(ctx, routingKey, ports.CachedLookup{Tenant: tenant, Found: true})
		return tenant, nil
	case errors.Is(err, domainerrors.ErrTenantNotFound):
		c.memoize(ctx, routingKey, ports.CachedLookup{Found: false})
		return entities.Tenant{}, err
	default:
		return entities.Tenant{}, err
	}
}

func (c CachedCatalog) memoize(ctx context.Context, routingKey string, lookup ports.CachedLookup) {
	if c.Cache == nil {
		return
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	// Best effort: a cold cache is correct, just slower.
	_ = c.Cache.Set(ctx, routingKey, lookup, ttl)
}
