package httpadapter

import (
	"context"
	"time"

	"atrium/contexts/customer-relations/contact-service/application"
	"atrium/contexts/customer-relations/contact-service/domain/entities"
	httptransport "atrium/contexts/customer-relations/contact-service/transport/http"
)

// Handler maps HTTP DTOs to contact use-cases.
type Handler struct {
	Service application.Service
}

func (h Handler) CreateContactHandler(ctx context.Context, request httptransport.ContactRequest) (httptransport.ContactResponse, error) {
	contact, err := h.Service.CreateContact(ctx, application.CreateContactInput{
		Name:    request.Name,
		Email:   request.Email,
		Phone:   request.Phone,
		Company: request.Company,
	})
	if err != nil {
		return httptransport.ContactResponse{}, err
	}
	return toResponse(contact), nil
}

func (h Handler) GetContactHandler(ctx context.Context, contactID string) (httptransport.ContactResponse, error) {
	contact, err := h.Service.GetContact(ctx, contactID)
	if err != nil {
		return httptransport.ContactResponse{}, err
	}
	return toResponse(contact), nil
}

func (h Handler) ListContactsHandler(ctx context.Context) (httptransport.ListContactsResponse, error) {
	contacts, err := h.Service.ListContacts(ctx)
	if err != nil {
		return httptransport.ListContactsResponse{}, err
	}
	items := make([]httptransport.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, toResponse(contact))
	}
	return httptransport.ListContactsResponse{Items: items}, nil
}

func (h Handler) UpdateContactHandler(ctx context.Context, contactID string, request httptransport.ContactRequest) (httptransport.ContactResponse, error) {
	contact, err := h.Service.UpdateContact(ctx, contactID, application.UpdateContactInput{
		Name:    request.Name,
		Email:   request.Email,
		Phone:   request.Phone,
		Company: request.Company,
	})
	if err != nil {
		return httptransport.ContactResponse{}, err
	}
	return toResponse(contact), nil
}

func (h Handler) DeleteContactHandler(ctx context.Context, contactID string) error {
	return h.Service.DeleteContact(ctx, contactID)
}

func toResponse(contact entities.Contact) httptransport.ContactResponse {
	return httptransport.ContactResponse{
		ContactID: contact.ContactID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Company:   contact.Company,
		CreatedAt: contact.CreatedAt.Format(time.RFC3339),
		UpdatedAt: contact.UpdatedAt.Format(time.RFC3339),
	}
}
