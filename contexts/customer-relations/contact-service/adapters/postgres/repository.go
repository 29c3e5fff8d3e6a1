package postgresadapter

import (
	"context"
	"errors"
	"strings"
	"time"

	"atrium/contexts/customer-relations/contact-service/domain/entities"
	domainerrors "atrium/contexts/customer-relations/contact-service/domain/errors"
	platformdb "atrium/internal/platform/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository persists contacts through the scoped connection. No
// method filters by tenant: the scope plugin conjoins the predicate
// and the session binder backs it with row-level security.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, contact entities.Contact) error {
	row := contactModelFromEntity(contact)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateContact
		}
		// Row policies are the last defense layer; a denial here means
		// the ORM scope was bypassed somewhere above.
		if platformdb.IsRLSDenied(err) {
			return platformdb.ErrScopeViolation
		}
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, contactID string) (entities.Contact, error) {
	var row contactModel
	err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contact{}, domainerrors.ErrContactNotFound
		}
		return entities.Contact{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context) ([]entities.Contact, error) {
	var rows []contactModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Contact, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) Update(ctx context.Context, contact entities.Contact) error {
	result := r.db.WithContext(ctx).
		Model(&contactModel{}).
		Where("contact_id = ?", strings.TrimSpace(contact.ContactID)).
		Updates(map[string]any{
			"name":    strings.TrimSpace(contact.Name),
			"email":   strings.TrimSpace(contact.Email),
			"phone":   strings.TrimSpace(contact.Phone),
			"company": strings.TrimSpace(contact.Company),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrContactNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, contactID string) error {
	result := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Delete(&contactModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrContactNotFound
	}
	return nil
}

type contactModel struct {
	ContactID string    `gorm:"column:contact_id;primaryKey"`
	TenantID  string    `gorm:"column:tenant_id"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	Company   string    `gorm:"column:company"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (contactModel) TableName() string {
	return "contacts"
}

func contactModelFromEntity(item entities.Contact) contactModel {
	return contactModel{
		ContactID: strings.TrimSpace(item.ContactID),
		TenantID:  strings.TrimSpace(item.TenantID),
		Name:      strings.TrimSpace(item.Name),
		Email:     strings.TrimSpace(item.Email),
		Phone:     strings.TrimSpace(item.Phone),
		Company:   strings.TrimSpace(item.Company),
		CreatedAt: item.CreatedAt.UTC(),
		UpdatedAt: item.UpdatedAt.UTC(),
	}
}

func (m contactModel) toEntity() entities.Contact {
	return entities.Contact{
		ContactID: m.ContactID,
		TenantID:  m.TenantID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Company:   m.Company,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
