package ports

import (
	"context"
	"time"

	"atrium/contexts/customer-relations/contact-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Repository persists contacts. Implementations do not filter by
// tenant themselves: the scoped connection conjoins the tenant
// predicate on every statement, and calling any method without a
// resolved tenant on the context is a scope violation.
type Repository interface {
	Create(ctx context.Context, contact entities.Contact) error
	Get(ctx context.Context, contactID string) (entities.Contact, error)
	List(ctx context.Context) ([]entities.Contact, error)
	Update(ctx context.Context, contact entities.Contact) error
	Delete(ctx context.Context, contactID string) error
}
