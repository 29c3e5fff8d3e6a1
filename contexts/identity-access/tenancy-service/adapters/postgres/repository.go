package postgresadapter

import (
	"context"
	"errors"
	"strings"
	"time"

	"atrium/contexts/identity-access/tenancy-service/domain/entities"
	domainerrors "atrium/contexts/identity-access/tenancy-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository implements ports.Catalog on postgres. The tenants table is
// the one deliberately cross-tenant table in the schema; bootstrap
// registers tenantModel as scope-exempt.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByRoutingKey(ctx context.Context, routingKey string) (entities.Tenant, error) {
	var row tenantModel
	err := r.db.WithContext(ctx).
		Where("routing_key = ?", strings.ToLower(strings.TrimSpace(routingKey))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Tenant{}, domainerrors.ErrTenantNotFound
		}
		return entities.Tenant{}, domainerrors.ErrCatalogUnavailable
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByID(ctx context.Context, tenantID string) (entities.Tenant, error) {
	var row tenantModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Tenant{}, domainerrors.ErrTenantNotFound
		}
		return entities.Tenant{}, domainerrors.ErrCatalogUnavailable
	}
	return row.toEntity(), nil
}

func (r *Repository) Create(ctx context.Context, tenant entities.Tenant) error {
	row := tenantModelFromEntity(tenant)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRoutingKeyTaken
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, tenantID string, status entities.TenantStatus, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&tenantModel{}).
		Where("tenant_id = ?", strings.TrimSpace(tenantID)).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTenantNotFound
	}
	return nil
}

func (r *Repository) ListChangedSince(ctx context.Context, since time.Time) ([]entities.Tenant, error) {
	var rows []tenantModel
	if err := r.db.WithContext(ctx).
		Where("updated_at >= ?", since.UTC()).
		Order("updated_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Tenant, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type tenantModel struct {
	TenantID   string    `gorm:"column:tenant_id;primaryKey"`
	RoutingKey string    `gorm:"column:routing_key;uniqueIndex"`
	Name       string    `gorm:"column:name"`
	Status     string    `gorm:"column:status"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (tenantModel) TableName() string {
	return "tenants"
}

// CatalogModel exposes the model for scope-exemption registration.
func CatalogModel() any {
	return &tenantModel{}
}

func tenantModelFromEntity(item entities.Tenant) tenantModel {
	return tenantModel{
		TenantID:   strings.TrimSpace(item.TenantID),
		RoutingKey: strings.ToLower(strings.TrimSpace(item.RoutingKey)),
		Name:       strings.TrimSpace(item.Name),
		Status:     string(item.Status),
		CreatedAt:  item.CreatedAt.UTC(),
		UpdatedAt:  item.UpdatedAt.UTC(),
	}
}

func (m tenantModel) toEntity() entities.Tenant {
	return entities.Tenant{
		TenantID:   m.TenantID,
		RoutingKey: m.RoutingKey,
		Name:       m.Name,
		Status:     entities.TenantStatus(m.Status),
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
