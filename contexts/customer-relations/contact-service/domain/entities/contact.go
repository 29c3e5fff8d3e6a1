package entities

import "time"

// Contact is a tenant-scoped CRM record. TenantID always equals the
// tenant of the request that wrote the row; the platform enforces this
// at the ORM layer and again with database row policies.
type Contact struct {
	ContactID string
	TenantID  string
	Name      string
	Email     string
	Phone     string
	Company   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
