package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"atrium/contexts/customer-relations/contact-service/domain/entities"
	domainerrors "atrium/contexts/customer-relations/contact-service/domain/errors"
	platformdb "atrium/internal/platform/db"
	"atrium/internal/shared/tenantctx"

	"github.com/google/uuid"
)

// Store is an in-memory adapter for tests and local development. It
// mirrors the platform scoping contract: every call requires a
// resolved tenant on the context and only that tenant's rows are
// visible, so handler tests exercise the same isolation properties as
// the postgres path.
type Store struct {
	mu       sync.RWMutex
	contacts map[string]entities.Contact
}

func NewStore() *Store {
	return &Store{contacts: make(map[string]entities.Contact)}
}

func (s *Store) Create(ctx context.Context, contact entities.Contact) error {
	tenantID, err := boundTenant(ctx)
	if err != nil {
		return err
	}
	if contact.TenantID == "" {
		contact.TenantID = tenantID
	} else if contact.TenantID != tenantID {
		return platformdb.ErrTenantMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.contacts[contact.ContactID]; exists {
		return domainerrors.ErrDuplicateContact
	}
	s.contacts[contact.ContactID] = contact
	return nil
}

func (s *Store) Get(ctx context.Context, contactID string) (entities.Contact, error) {
	tenantID, err := boundTenant(ctx)
	if err != nil {
		return entities.Contact{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	contact, ok := s.contacts[contactID]
	if !ok || contact.TenantID != tenantID {
		return entities.Contact{}, domainerrors.ErrContactNotFound
	}
	return contact, nil
}

func (s *Store) List(ctx context.Context) ([]entities.Contact, error) {
	tenantID, err := boundTenant(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Contact, 0)
	for _, contact := range s.contacts {
		if contact.TenantID == tenantID {
			items = append(items, contact)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) Update(ctx context.Context, contact entities.Contact) error {
	tenantID, err := boundTenant(ctx)
	if err != nil {
		return err
	}
	if contact.TenantID != "" && contact.TenantID != tenantID {
		return platformdb.ErrTenantMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.contacts[contact.ContactID]
	if !ok || existing.TenantID != tenantID {
		return domainerrors.ErrContactNotFound
	}
	contact.TenantID = existing.TenantID
	s.contacts[contact.ContactID] = contact
	return nil
}

func (s *Store) Delete(ctx context.Context, contactID string) error {
	tenantID, err := boundTenant(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.contacts[contactID]
	if !ok || existing.TenantID != tenantID {
		return domainerrors.ErrContactNotFound
	}
	delete(s.contacts, contactID)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func boundTenant(ctx context.Context) (string, error) {
	tc, _ := tenantctx.From(ctx)
	if !tc.Resolved {
		return "", platformdb.ErrScopeViolation
	}
	return tc.TenantID, nil
}
