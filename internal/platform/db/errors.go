package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrScopeViolation reports a scoped-entity operation that ran with
	// no tenant bound to the request. This is a programming error in
	// the caller, never recovered into a degraded state.
	ErrScopeViolation = errors.New("scoped entity access without a resolved tenant")

	// ErrTenantMismatch reports a write that tried to set or modify a
	// tenant_id different from the request's tenant. It indicates a
	// bypass of the scoping layer and is never silently corrected.
	ErrTenantMismatch = errors.New("write crosses tenant boundary")

	// ErrPreparedStatementsUnsupported: prepared statements would run
	// later on arbitrary pooled connections, outside the session
	// binder, so the pool refuses to create them.
	ErrPreparedStatementsUnsupported = errors.New("prepared statements bypass tenant session binding")
)

// IsRLSDenied reports whether postgres row-level security rejected the
// statement (the third defense layer firing).
func IsRLSDenied(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42501"
}
