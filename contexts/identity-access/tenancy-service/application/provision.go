package application

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"atrium/contexts/identity-access/tenancy-service/domain/entities"
	domainerrors "atrium/contexts/identity-access/tenancy-service/domain/errors"
	"atrium/contexts/identity-access/tenancy-service/ports"
)

var routingKeyPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ProvisionService creates organizations and moves them between
// statuses. Status changes invalidate the routing cache so suspension
// takes effect within the cache TTL at worst.
type ProvisionService struct {
	Catalog     ports.Catalog
	Cache       ports.CatalogCache
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// RegisterTenantInput is the provisioning request.
type RegisterTenantInput struct {
	RoutingKey string
	Name       string
}

func (s ProvisionService) RegisterTenant(ctx context.Context, input RegisterTenantInput) (entities.Tenant, error) {
	routingKey := strings.ToLower(strings.TrimSpace(input.RoutingKey))
	if !routingKeyPattern.MatchString(routingKey) || routingKey == ReservedLabel {
		return entities.Tenant{}, domainerrors.ErrInvalidRoutingKey
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return entities.Tenant{}, domainerrors.ErrInvalidTenantName
	}

	tenantID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Tenant{}, err
	}

	now := s.Clock.Now().UTC()
	tenant := entities.Tenant{
		TenantID:   tenantID,
		RoutingKey: routingKey,
		Name:       name,
		Status:     entities.TenantStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Catalog.Create(ctx, tenant); err != nil {
		return entities.Tenant{}, err
	}
	s.invalidate(ctx, routingKey)

	s.logger().Info("tenant registered",
		"event", "tenant_registered",
		"module", "contexts/identity-access/tenancy-service",
		"layer", "application",
		"tenant_id", tenant.TenantID,
		"routing_key", tenant.RoutingKey,
	)
	return tenant, nil
}

func (s ProvisionService) SuspendTenant(ctx context.Context, tenantID string) error {
	return s.setStatus(ctx, tenantID, entities.TenantStatusSuspended)
}

func (s ProvisionService) ActivateTenant(ctx context.Context, tenantID string) error {
	return s.setStatus(ctx, tenantID, entities.TenantStatusActive)
}

func (s ProvisionService) setStatus(ctx context.Context, tenantID string, status entities.TenantStatus) error {
	tenant, err := s.Catalog.FindByID(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return err
	}
	if err := s.Catalog.UpdateStatus(ctx, tenant.TenantID, status, s.Clock.Now().UTC()); err != nil {
		return err
	}
	s.invalidate(ctx, tenant.RoutingKey)

	s.logger().Info("tenant status changed",
		"event", "tenant_status_changed",
		"module", "contexts/identity-access/tenancy-service",
		"layer", "application",
		"tenant_id", tenant.TenantID,
		"status", string(status),
	)
	return nil
}

func (s ProvisionService) invalidate(ctx context.Context, routingKey string) {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.Invalidate(ctx, routingKey)
}

func (s ProvisionService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
