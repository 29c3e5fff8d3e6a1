package tenantctx

import "context"

// Context is the per-request tenant binding shared across Atrium.
// It is immutable after the resolver creates it and travels on the
// request context.Context, never through globals.
type Context struct {
	TenantID string
	Resolved bool
}

// Unresolved is the zero binding used for exempt-path requests.
func Unresolved() Context {
	return Context{}
}

// Bound returns a resolved binding for the given tenant id.
func Bound(tenantID string) Context {
	return Context{TenantID: tenantID, Resolved: true}
}

type contextKey struct{}

// With attaches the tenant binding to the request context.
func With(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// From returns the tenant binding carried by ctx. The second return is
// false when no resolver ran for this context at all.
func From(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}

// TenantID returns the bound tenant id, or "" when unresolved.
func TenantID(ctx context.Context) string {
	tc, ok := From(ctx)
	if !ok || !tc.Resolved {
		return ""
	}
	return tc.TenantID
}
