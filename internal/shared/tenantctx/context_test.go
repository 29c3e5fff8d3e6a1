package tenantctx

import (
	"context"
	"testing"
)

func TestFromWithoutResolverRuns(t *testing.T) {
	tc, ok := From(context.Background())
	if ok {
		t.Fatalf("expected no binding on a fresh context")
	}
	if tc.Resolved {
		t.Fatalf("zero binding must be unresolved")
	}
}

func TestBoundRoundTrip(t *testing.T) {
	ctx := With(context.Background(), Bound("tenant-1"))

	tc, ok := From(ctx)
	if !ok || !tc.Resolved || tc.TenantID != "tenant-1" {
		t.Fatalf("unexpected binding: %+v ok=%v", tc, ok)
	}
	if got := TenantID(ctx); got != "tenant-1" {
		t.Fatalf("expected tenant-1, got %q", got)
	}
}

func TestUnresolvedYieldsEmptyTenantID(t *testing.T) {
	ctx := With(context.Background(), Unresolved())
	if got := TenantID(ctx); got != "" {
		t.Fatalf("expected empty tenant id, got %q", got)
	}
}

func TestRebindDoesNotMutateOuterContext(t *testing.T) {
	outer := With(context.Background(), Bound("tenant-a"))
	inner := With(outer, Bound("tenant-b"))

	if got := TenantID(outer); got != "tenant-a" {
		t.Fatalf("outer context mutated: %q", got)
	}
	if got := TenantID(inner); got != "tenant-b" {
		t.Fatalf("inner context wrong: %q", got)
	}
}
