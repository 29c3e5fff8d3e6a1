package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres wraps DB connectivity. Every gorm statement flows through
// the session-binding pool and the tenant scope/audit plugins, so the
// handle is safe to share across requests.
type Postgres struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

func Connect(dsn string, log *slog.Logger, exemptModels ...any) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	gormDB, err := Open(sqlDB, log, exemptModels...)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Postgres{DB: gormDB, sqlDB: sqlDB}, nil
}

// Open builds the scoped gorm handle over an existing pool. Split from
// Connect so tests can supply a mock *sql.DB.
func Open(sqlDB *sql.DB, log *slog.Logger, exemptModels ...any) (*gorm.DB, error) {
	pool := NewSessionBindingPool(sqlDB, log)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: pool}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	if err := gormDB.Use(NewScopePlugin(exemptModels...)); err != nil {
		return nil, fmt.Errorf("install tenant scope plugin: %w", err)
	}
	if err := gormDB.Use(&AuditStamper{}); err != nil {
		return nil, fmt.Errorf("install audit stamper: %w", err)
	}
	return gormDB, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.sqlDB == nil {
		return nil
	}
	return p.sqlDB.Close()
}
