package application

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	domainerrors "atrium/contexts/identity-access/tenancy-service/domain/errors"
	"atrium/internal/shared/tenantctx"
)

// ReservedLabel is never a tenant routing key.
const ReservedLabel = "www"

// Resolution is the resolver outcome for one request. When Allowed is
// true the request proceeds with Context (which may be unresolved on an
// exempt path); otherwise the caller must reject with not-found.
type Resolution struct {
	Context    tenantctx.Context
	Allowed    bool
	ExemptPath bool
	RoutingKey string
}

// Resolver binds every inbound request to exactly one tenant. It must
// complete before any scoped query runs in the same request.
type Resolver struct {
	Lookup TenantLookup
	Exempt *ExemptPathSet

	// BaseDomain is the registered apex, e.g. "example.com". A tenant
	// host is exactly one label in front of it.
	BaseDomain string

	// OverrideHeader names the non-production escape hatch for local
	// testing without DNS wildcarding. Empty disables it entirely.
	OverrideHeader string

	// AllowUnresolved lets non-exempt requests through without a
	// tenant. Only reachable in non-production builds; every use is
	// logged loudly.
	AllowUnresolved bool

	Logger *slog.Logger
}

// Resolve determines the routing key for the request, looks it up, and
// applies the exemption policy. overrideKey is the raw value of the
// override header (the transport only passes it in non-production).
func (r Resolver) Resolve(ctx context.Context, host, overrideKey, path string) (Resolution, error) {
	routingKey := r.RoutingKeyFromHost(host)
	if routingKey == "" && r.OverrideHeader != "" {
		routingKey = strings.ToLower(strings.TrimSpace(overrideKey))
	}

	exempt := r.Exempt.Match(path)
	resolution := Resolution{
		Context:    tenantctx.Unresolved(),
		ExemptPath: exempt,
		RoutingKey: routingKey,
	}

	if routingKey != "" {
		tenant, err := r.Lookup.FindByRoutingKey(ctx, routingKey)
		switch {
		case err == nil:
			if tenant.Routable() {
				resolution.Context = tenantctx.Bound(tenant.TenantID)
			} else {
				// Externally indistinguishable from an unknown key; the
				// real reason only reaches the logs.
				r.logger().Info("suspended tenant treated as unresolved",
					"event", "tenant_suspended_rejected",
					"module", "contexts/identity-access/tenancy-service",
					"layer", "application",
					"tenant_id", tenant.TenantID,
					"error", domainerrors.ErrTenantSuspended.Error(),
				)
			}
		case errors.Is(err, domainerrors.ErrTenantNotFound):
			// Unresolved; the exemption policy below decides.
		default:
			if exempt {
				// Exempt paths never require a tenant, so a catalog
				// outage must not take them down.
				resolution.Allowed = true
				return resolution, nil
			}
			return resolution, domainerrors.ErrCatalogUnavailable
		}
	}

	if resolution.Context.Resolved || exempt {
		resolution.Allowed = true
		return resolution, nil
	}

	if r.AllowUnresolved {
		r.logger().Warn("tenant enforcement bypassed for unresolved request",
			"event", "tenant_resolution_bypassed",
			"module", "contexts/identity-access/tenancy-service",
			"layer", "application",
			"host", host,
			"path", path,
		)
		resolution.Allowed = true
		return resolution, nil
	}

	r.logger().Info("no tenant resolved for non-exempt path",
		"event", "tenant_unresolved",
		"module", "contexts/identity-access/tenancy-service",
		"layer", "application",
		"host", host,
		"path", path,
		"routing_key", routingKey,
	)
	return resolution, domainerrors.ErrTenantNotFound
}

// RoutingKeyFromHost extracts the tenant label from the Host header.
// The label "www" is reserved and hosts with fewer than three labels
// carry no tenant. When BaseDomain is set the host must be exactly one
// label in front of it.
func (r Resolver) RoutingKeyFromHost(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" {
		return ""
	}

	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	label := labels[0]
	if label == "" || label == ReservedLabel {
		return ""
	}

	if base := strings.ToLower(strings.TrimSpace(r.BaseDomain)); base != "" {
		if !strings.EqualFold(strings.Join(labels[1:], "."), base) {
			return ""
		}
	}
	return label
}

func (r Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
