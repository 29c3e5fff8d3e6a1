package application

import (
	"context"
	"log/slog"
	"strings"

	"atrium/contexts/customer-relations/contact-service/domain/entities"
	domainerrors "atrium/contexts/customer-relations/contact-service/domain/errors"
	"atrium/contexts/customer-relations/contact-service/ports"
)

// Service is the contact CRUD use-case layer. It never names the
// tenant: the request context carries the binding and the platform
// scopes every repository call.
type Service struct {
	Repo        ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// CreateContactInput is the create request.
type CreateContactInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

func (s Service) CreateContact(ctx context.Context, input CreateContactInput) (entities.Contact, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return entities.Contact{}, domainerrors.ErrInvalidContact
	}

	contactID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Contact{}, err
	}

	now := s.Clock.Now().UTC()
	contact := entities.Contact{
		ContactID: contactID,
		Name:      name,
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Company:   strings.TrimSpace(input.Company),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, contact); err != nil {
		return entities.Contact{}, err
	}
	return contact, nil
}

func (s Service) GetContact(ctx context.Context, contactID string) (entities.Contact, error) {
	return s.Repo.Get(ctx, strings.TrimSpace(contactID))
}

func (s Service) ListContacts(ctx context.Context) ([]entities.Contact, error) {
	return s.Repo.List(ctx)
}

// UpdateContactInput carries mutable contact fields.
type UpdateContactInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

func (s Service) UpdateContact(ctx context.Context, contactID string, input UpdateContactInput) (entities.Contact, error) {
	contact, err := s.Repo.Get(ctx, strings.TrimSpace(contactID))
	if err != nil {
		return entities.Contact{}, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		contact.Name = name
	}
	contact.Email = strings.TrimSpace(input.Email)
	contact.Phone = strings.TrimSpace(input.Phone)
	contact.Company = strings.TrimSpace(input.Company)
	contact.UpdatedAt = s.Clock.Now().UTC()

	if err := s.Repo.Update(ctx, contact); err != nil {
		return entities.Contact{}, err
	}
	return contact, nil
}

func (s Service) DeleteContact(ctx context.Context, contactID string) error {
	return s.Repo.Delete(ctx, strings.TrimSpace(contactID))
}
