package ports

import (
	"context"
	"time"

	"atrium/contexts/identity-access/tenancy-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for provisioning.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Catalog is the read/write store of tenant identities. Lookups run on
// every request, so implementations must be cheap; the resolver fronts
// them with a CatalogCache.
type Catalog interface {
	FindByRoutingKey(ctx context.Context, routingKey string) (entities.Tenant, error)
	FindByID(ctx context.Context, tenantID string) (entities.Tenant, error)
	Create(ctx context.Context, tenant entities.Tenant) error
	UpdateStatus(ctx context.Context, tenantID string, status entities.TenantStatus, updatedAt time.Time) error
	// ListChangedSince returns tenants whose row changed at or after the
	// given instant. The cache sweeper uses it to bound staleness.
	ListChangedSince(ctx context.Context, since time.Time) ([]entities.Tenant, error)
}

// CatalogCache is a short-TTL read-through cache keyed by routing key.
// Negative results are cached too so unknown subdomains do not hammer
// the catalog store.
type CatalogCache interface {
	Get(ctx context.Context, routingKey string) (CachedLookup, bool, error)
	Set(ctx context.Context, routingKey string, lookup CachedLookup, ttl time.Duration) error
	Invalidate(ctx context.Context, routingKey string) error
}

// CachedLookup is one memoized catalog answer. Found=false records a
// not-found result.
type CachedLookup struct {
	Tenant entities.Tenant
	Found  bool
}
