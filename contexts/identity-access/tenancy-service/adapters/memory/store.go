package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"atrium/contexts/identity-access/tenancy-service/domain/entities"
	domainerrors "atrium/contexts/identity-access/tenancy-service/domain/errors"
	"atrium/contexts/identity-access/tenancy-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the catalog and cache
// ports. It is intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	byID         map[string]entities.Tenant
	byRoutingKey map[string]string
	cache        map[string]cacheEntry
}

type cacheEntry struct {
	lookup    ports.CachedLookup
	expiresAt time.Time
}

// NewStore builds an empty in-memory catalog.
func NewStore() *Store {
	return &Store{
		byID:         make(map[string]entities.Tenant),
		byRoutingKey: make(map[string]string),
		cache:        make(map[string]cacheEntry),
	}
}

func (s *Store) FindByRoutingKey(_ context.Context, routingKey string) (entities.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID, ok := s.byRoutingKey[strings.ToLower(strings.TrimSpace(routingKey))]
	if !ok {
		return entities.Tenant{}, domainerrors.ErrTenantNotFound
	}
	return s.byID[tenantID], nil
}

func (s *Store) FindByID(_ context.Context, tenantID string) (entities.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.byID[strings.TrimSpace(tenantID)]
	if !ok {
		return entities.Tenant{}, domainerrors.ErrTenantNotFound
	}
	return tenant, nil
}

func (s *Store) Create(_ context.Context, tenant entities.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byRoutingKey[tenant.RoutingKey]; taken {
		return domainerrors.ErrRoutingKeyTaken
	}
	s.byID[tenant.TenantID] = tenant
	s.byRoutingKey[tenant.RoutingKey] = tenant.TenantID
	return nil
}

func (s *Store) UpdateStatus(_ context.Context, tenantID string, status entities.TenantStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.byID[strings.TrimSpace(tenantID)]
	if !ok {
		return domainerrors.ErrTenantNotFound
	}
	tenant.Status = status
	tenant.UpdatedAt = updatedAt.UTC()
	s.byID[tenant.TenantID] = tenant
	return nil
}

func (s *Store) ListChangedSince(_ context.Context, since time.Time) ([]entities.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var changed []entities.Tenant
	for _, tenant := range s.byID {
		if !tenant.UpdatedAt.Before(since) {
			changed = append(changed, tenant)
		}
	}
	return changed, nil
}

func (s *Store) Get(_ context.Context, routingKey string) (ports.CachedLookup, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[routingKey]
	if !ok || time.Now().After(entry.expiresAt) {
		return ports.CachedLookup{}, false, nil
	}
	return entry.lookup, true, nil
}

func (s *Store) Set(_ context.Context, routingKey string, lookup ports.CachedLookup, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[routingKey] = cacheEntry{lookup: lookup, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *Store) Invalidate(_ context.Context, routingKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, routingKey)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
