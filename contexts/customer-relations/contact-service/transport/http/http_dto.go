package http

// ContactRequest creates or updates a contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// ContactResponse is the contact read model. The tenant id is never
// part of the payload; it is implied by the request's tenant.
type ContactResponse struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListContactsResponse wraps the collection read model.
type ListContactsResponse struct {
	Items []ContactResponse `json:"items"`
}

// ErrorResponse is the transport error shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
