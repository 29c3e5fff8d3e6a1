package httpadapter

import (
	"context"
	"time"

	"atrium/contexts/identity-access/tenancy-service/application"
	httptransport "atrium/contexts/identity-access/tenancy-service/transport/http"
)

// Handler maps HTTP DTOs to provisioning use-cases.
type Handler struct {
	Provision application.ProvisionService
}

// RegisterTenantHandler provisions an organization. The route is exempt
// from tenant resolution: the caller does not have a tenant yet.
func (h Handler) RegisterTenantHandler(ctx context.Context, request httptransport.RegisterTenantRequest) (httptransport.TenantResponse, error) {
	tenant, err := h.Provision.RegisterTenant(ctx, application.RegisterTenantInput{
		RoutingKey: request.RoutingKey,
		Name:       request.Name,
	})
	if err != nil {
		return httptransport.TenantResponse{}, err
	}
	return httptransport.TenantResponse{
		TenantID:   tenant.TenantID,
		RoutingKey: tenant.RoutingKey,
		Name:       tenant.Name,
		Status:     string(tenant.Status),
		CreatedAt:  tenant.CreatedAt.Format(time.RFC3339),
	}, nil
}

// SuspendTenantHandler disables routing for a tenant.
func (h Handler) SuspendTenantHandler(ctx context.Context, tenantID string) error {
	return h.Provision.SuspendTenant(ctx, tenantID)
}

// ActivateTenantHandler re-enables routing for a tenant.
func (h Handler) ActivateTenantHandler(ctx context.Context, tenantID string) error {
	return h.Provision.ActivateTenant(ctx, tenantID)
}
