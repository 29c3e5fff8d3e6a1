package http

// RegisterTenantRequest provisions a new organization.
type RegisterTenantRequest struct {
	RoutingKey string `json:"routing_key"`
	Name       string `json:"name"`
}

// TenantResponse is the provisioning read model.
type TenantResponse struct {
	TenantID   string `json:"tenant_id"`
	RoutingKey string `json:"routing_key"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// ErrorResponse is the transport error shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
