package application

import (
	"context"
	"log/slog"
	"time"

	"atrium/contexts/identity-access/tenancy-service/ports"
)

// CacheSweeper bounds routing-cache staleness: each run invalidates
// cached lookups for tenants whose catalog row changed since the last
// run, so suspensions propagate even to entries that would otherwise
// live out their TTL.
type CacheSweeper struct {
	Catalog ports.Catalog
	Cache   ports.CatalogCache
	Clock   ports.Clock
	Logger  *slog.Logger

	lastSweep time.Time
}

func (s *CacheSweeper) RunOnce(ctx context.Context) error {
	now := s.Clock.Now().UTC()
	since := s.lastSweep
	if since.IsZero() {
		since = now.Add(-time.Minute)
	}

	changed, err := s.Catalog.ListChangedSince(ctx, since)
	if err != nil {
		return err
	}
	for _, tenant := range changed {
		if err := s.Cache.Invalidate(ctx, tenant.RoutingKey); err != nil {
			return err
		}
	}

	if len(changed) > 0 {
		s.logger().Info("routing cache entries invalidated",
			"event", "tenant_cache_swept",
			"module", "contexts/identity-access/tenancy-service",
			"layer", "application",
			"invalidated", len(changed),
		)
	}
	s.lastSweep = now
	return nil
}

func (s *CacheSweeper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
