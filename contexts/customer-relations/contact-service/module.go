package contacts

import (
	"log/slog"

	httpadapter "atrium/contexts/customer-relations/contact-service/adapters/http"
	"atrium/contexts/customer-relations/contact-service/adapters/memory"
	"atrium/contexts/customer-relations/contact-service/application"
	"atrium/contexts/customer-relations/contact-service/ports"
)

// Module is the contact-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service},
	}
}

// NewInMemoryModule builds a development/testing module with the
// in-memory scoped store.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := NewStoreAdapter()
	module := NewModule(Dependencies{
		Repository:  store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

// NewStoreAdapter exposes the memory store for test seeding.
func NewStoreAdapter() *memory.Store {
	return memory.NewStore()
}
