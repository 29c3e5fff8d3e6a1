package tenancy

import (
	"log/slog"
	"time"

	httpadapter "atrium/contexts/identity-access/tenancy-service/adapters/http"
	"atrium/contexts/identity-access/tenancy-service/adapters/memory"
	"atrium/contexts/identity-access/tenancy-service/application"
	"atrium/contexts/identity-access/tenancy-service/ports"
)

// Module is the tenancy composition root exposed to runtime wiring.
type Module struct {
	Resolver application.Resolver
	Handler  httpadapter.Handler
	Sweeper  *application.CacheSweeper
	Store    *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Catalog     ports.Catalog
	Cache       ports.CatalogCache
	Clock       ports.Clock
	IDGenerator ports.IDGenerator

	BaseDomain      string
	OverrideHeader  string
	ExemptPaths     []string
	AllowUnresolved bool
	CacheTTL        time.Duration

	Logger *slog.Logger
}

// NewModule wires the resolver, provisioning and cache maintenance
// use-cases against explicit ports.
func NewModule(deps Dependencies) Module {
	lookup := application.CachedCatalog{
		Catalog: deps.Catalog,
		Cache:   deps.Cache,
		TTL:     deps.CacheTTL,
	}
	resolver := application.Resolver{
		Lookup:          lookup,
		Exempt:          application.NewExemptPathSet(deps.ExemptPaths...),
		BaseDomain:      deps.BaseDomain,
		OverrideHeader:  deps.OverrideHeader,
		AllowUnresolved: deps.AllowUnresolved,
		Logger:          deps.Logger,
	}
	provision := application.ProvisionService{
		Catalog:     deps.Catalog,
		Cache:       deps.Cache,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	sweeper := &application.CacheSweeper{
		Catalog: deps.Catalog,
		Cache:   deps.Cache,
		Clock:   deps.Clock,
		Logger:  deps.Logger,
	}

	if deps.AllowUnresolved && deps.Logger != nil {
		deps.Logger.Warn("unresolved-tenant passthrough is ARMED; never enable outside local development",
			"event", "tenant_bypass_armed",
			"module", "contexts/identity-access/tenancy-service",
			"layer", "application",
		)
	}

	return Module{
		Resolver: resolver,
		Handler:  httpadapter.Handler{Provision: provision},
		Sweeper:  sweeper,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(baseDomain string, exemptPaths []string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Catalog:        store,
		Cache:          store,
		Clock:          store,
		IDGenerator:    store,
		BaseDomain:     baseDomain,
		OverrideHeader: "X-Tenant-Key",
		ExemptPaths:    exemptPaths,
		CacheTTL:       30 * time.Second,
		Logger:         logger,
	})
	module.Store = store
	return module
}
