package entities

import "time"

// TenantStatus is the provisioning state of an organization.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is one isolated organization. Rows are created by provisioning
// and are read-only to the resolver path.
type Tenant struct {
	TenantID   string
	RoutingKey string
	Name       string
	Status     TenantStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Routable reports whether requests may resolve to this tenant.
func (t Tenant) Routable() bool {
	return t.Status == TenantStatusActive
}
