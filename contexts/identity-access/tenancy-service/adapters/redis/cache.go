package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"atrium/contexts/identity-access/tenancy-service/domain/entities"
	"atrium/contexts/identity-access/tenancy-service/ports"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "tenancy:routing:"

// Cache implements ports.CatalogCache on Redis so all API processes
// share one routing cache and one invalidation.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// payload is the stored shape. Found=false records a negative lookup.
type payload struct {
	TenantID   string `json:"tenant_id,omitempty"`
	RoutingKey string `json:"routing_key,omitempty"`
	Name       string `json:"name,omitempty"`
	Status     string `json:"status,omitempty"`
	Found      bool   `json:"found"`
}

func (c *Cache) Get(ctx context.Context, routingKey string) (ports.CachedLookup, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+routingKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.CachedLookup{}, false, nil
		}
		return ports.CachedLookup{}, false, fmt.Errorf("get routing cache entry: %w", err)
	}

	var stored payload
	if err := json.Unmarshal(raw, &stored); err != nil {
		// Treat a corrupt entry as a miss; the read-through path will
		// overwrite it.
		return ports.CachedLookup{}, false, nil
	}
	if !stored.Found {
		return ports.CachedLookup{Found: false}, true, nil
	}
	return ports.CachedLookup{
		Found: true,
		Tenant: entities.Tenant{
			TenantID:   stored.TenantID,
			RoutingKey: stored.RoutingKey,
			Name:       stored.Name,
			Status:     entities.TenantStatus(stored.Status),
		},
	}, true, nil
}

func (c *Cache) Set(ctx context.Context, routingKey string, lookup ports.CachedLookup, ttl time.Duration) error {
	stored := payload{Found: lookup.Found}
	if lookup.Found {
		stored.TenantID = lookup.Tenant.TenantID
		stored.RoutingKey = lookup.Tenant.RoutingKey
		stored.Name = lookup.Tenant.Name
		stored.Status = string(lookup.Tenant.Status)
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, keyPrefix+routingKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set routing cache entry: %w", err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, routingKey string) error {
	if err := c.client.Del(ctx, keyPrefix+routingKey).Err(); err != nil {
		return fmt.Errorf("invalidate routing cache entry: %w", err)
	}
	return nil
}
