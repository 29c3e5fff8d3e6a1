package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"atrium/internal/shared/tenantctx"

	"gorm.io/gorm"
)

// SessionTenantVar is the postgres session variable consumed by
// row-level security policies:
//
//	USING (tenant_id = current_setting('app.current_tenant', true)::uuid)
const SessionTenantVar = "app.current_tenant"

// The variable name is a compile-time constant; only the value is a
// bind parameter.
const (
	bindStatement      = "SELECT set_config('" + SessionTenantVar + "', $1, false)"
	bindLocalStatement = "SELECT set_config('" + SessionTenantVar + "', $1, true)"
)

// SessionBindingPool is a gorm.ConnPool over *sql.DB that pushes the
// request's tenant id into the connection's session variable on every
// checkout, before any statement runs on that connection.
//
// Physical connections are reused across requests, so the binding is
// borrowed connection state, not request state: it is re-executed on
// every borrow and explicitly cleared (set to '') when the request has
// no resolved tenant. A bind failure aborts the operation; a statement
// never runs on an unbound connection.
type SessionBindingPool struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSessionBindingPool(sqlDB *sql.DB, logger *slog.Logger) *SessionBindingPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionBindingPool{db: sqlDB, logger: logger}
}

func (p *SessionBindingPool) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, ErrPreparedStatementsUnsupported
}

func (p *SessionBindingPool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	conn, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.ExecContext(ctx, query, args...)
}

func (p *SessionBindingPool) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	conn, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Close blocks until the caller closes rows, then returns the
	// connection to the pool.
	go func() { _ = conn.Close() }()
	return rows, nil
}

func (p *SessionBindingPool) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	conn, err := p.checkout(ctx)
	if err != nil {
		// gorm.ConnPool gives no error return here; surface the bind
		// failure through the row.
		return p.db.QueryRowContext(ctx, "SELECT atrium_session_bind_failed()")
	}
	row := conn.QueryRowContext(ctx, query, args...)
	go func() { _ = conn.Close() }()
	return row
}

// BeginTx implements gorm.ConnPoolBeginner. The binding uses SET LOCAL
// semantics inside the transaction, so it cannot outlive the commit on
// the pooled connection.
func (p *SessionBindingPool) BeginTx(ctx context.Context, opts *sql.TxOptions) (gorm.ConnPool, error) {
	tx, err := p.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, bindLocalStatement, tenantctx.TenantID(ctx)); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("bind tenant session variable in tx: %w", err)
	}
	return tx, nil
}

// GetDBConn exposes the underlying pool for gorm's DB()/Ping plumbing.
func (p *SessionBindingPool) GetDBConn() (*sql.DB, error) {
	return p.db, nil
}

// checkout borrows one physical connection and binds (or clears) the
// tenant session variable before handing it out.
func (p *SessionBindingPool) checkout(ctx context.Context) (*sql.Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	tenantID := tenantctx.TenantID(ctx)
	if _, err := conn.ExecContext(ctx, bindStatement, tenantID); err != nil {
		_ = conn.Close()
		p.logger.Error("tenant session binding failed; aborting operation",
			"event", "session_bind_failed",
			"module", "internal/platform/db",
			"layer", "platform",
			"error", err.Error(),
		)
		return nil, fmt.Errorf("bind tenant session variable: %w", err)
	}
	return conn, nil
}
