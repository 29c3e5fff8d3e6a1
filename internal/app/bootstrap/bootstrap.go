package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	contacts "atrium/contexts/customer-relations/contact-service"
	contactpostgres "atrium/contexts/customer-relations/contact-service/adapters/postgres"
	tenancy "atrium/contexts/identity-access/tenancy-service"
	tenancymemory "atrium/contexts/identity-access/tenancy-service/adapters/memory"
	tenancypostgres "atrium/contexts/identity-access/tenancy-service/adapters/postgres"
	tenancyredis "atrium/contexts/identity-access/tenancy-service/adapters/redis"
	"atrium/contexts/identity-access/tenancy-service/application"
	"atrium/contexts/identity-access/tenancy-service/ports"
	"atrium/internal/platform/config"
	"atrium/internal/platform/db"
	"atrium/internal/platform/httpserver"

	goredis "github.com/go-redis/redis/v8"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *goredis.Client
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	redis        *goredis.Client
	sweeper      *application.CacheSweeper
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	// The tenants table is the one deliberately cross-tenant table.
	pg, err := db.Connect(cfg.PostgresDSN, logger, tenancypostgres.CatalogModel())
	if err != nil {
		return nil, err
	}

	redisClient, cache := buildCache(cfg)
	catalog := tenancypostgres.NewRepository(pg.DB)
	tenancyModule := tenancy.NewModule(tenancy.Dependencies{
		Catalog:         catalog,
		Cache:           cache,
		Clock:           tenancypostgres.SystemClock{},
		IDGenerator:     tenancypostgres.UUIDGenerator{},
		BaseDomain:      cfg.BaseDomain,
		OverrideHeader:  cfg.OverrideHeader,
		ExemptPaths:     cfg.ExemptPaths,
		AllowUnresolved: cfg.AllowUnresolvedTenant,
		CacheTTL:        cfg.CacheTTL,
		Logger:          logger,
	})

	contactsModule := contacts.NewModule(contacts.Dependencies{
		Repository:  contactpostgres.NewRepository(pg.DB),
		Clock:       tenancypostgres.SystemClock{},
		IDGenerator: tenancypostgres.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(tenancyModule, contactsModule, logger, httpserver.Options{
		Addr:            normalizeAddr(cfg.HTTPPort),
		OverrideEnabled: !cfg.Production(),
	})
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisClient,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, logger, tenancypostgres.CatalogModel())
	if err != nil {
		return nil, err
	}

	redisClient, cache := buildCache(cfg)
	return &WorkerApp{
		postgres: pg,
		redis:    redisClient,
		sweeper: &application.CacheSweeper{
			Catalog: tenancypostgres.NewRepository(pg.DB),
			Cache:   cache,
			Clock:   tenancypostgres.SystemClock{},
			Logger:  logger,
		},
		pollInterval: cfg.SweepInterval,
		logger:       logger,
	}, nil
}

// buildCache prefers the shared Redis routing cache and falls back to
// a per-process in-memory cache for single-node development.
func buildCache(cfg config.Config) (*goredis.Client, ports.CatalogCache) {
	if cfg.RedisAddr == "" {
		return nil, tenancymemory.NewStore()
	}
	client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	return client, tenancyredis.NewCache(client)
}

func (a *APIApp) Run(_ context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.sweeper.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.redis != nil {
		_ = w.redis.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
