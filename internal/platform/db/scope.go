package db

import (
	"reflect"
	"strings"

	"atrium/internal/shared/tenantctx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// TenantColumn is the column every scoped entity carries.
const TenantColumn = "tenant_id"

// ScopePlugin conjoins `tenant_id = ?` onto every statement against a
// scoped model and validates tenant_id on writes. A model is scoped
// when its schema has a tenant_id field; intentionally cross-tenant
// models (the tenant catalog itself) are registered via Exempt rather
// than relying on bypass behavior.
//
// With no resolved tenant, touching a scoped model fails with
// ErrScopeViolation: the enforcer fails fast instead of delegating to
// the database policies alone.
type ScopePlugin struct {
	exempt map[reflect.Type]struct{}
}

func NewScopePlugin(exemptModels ...any) *ScopePlugin {
	p := &ScopePlugin{exempt: make(map[reflect.Type]struct{})}
	p.Exempt(exemptModels...)
	return p
}

// Exempt registers deliberately cross-tenant models.
func (p *ScopePlugin) Exempt(models ...any) {
	for _, model := range models {
		t := reflect.TypeOf(model)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		p.exempt[t] = struct{}{}
	}
}

func (p *ScopePlugin) Name() string {
	return "atrium:tenant_scope"
}

func (p *ScopePlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("atrium:scope_query", p.beforeRead); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("atrium:scope_row", p.beforeRead); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("atrium:scope_create", p.beforeCreate); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("atrium:scope_update", p.beforeUpdate); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("atrium:scope_delete", p.beforeDelete)
}

func (p *ScopePlugin) beforeRead(db *gorm.DB) {
	field, tenantID, ok := p.guard(db)
	if !ok || field == nil {
		return
	}
	addTenantPredicate(db, tenantID)
}

func (p *ScopePlugin) beforeCreate(db *gorm.DB) {
	field, tenantID, ok := p.guard(db)
	if !ok || field == nil {
		return
	}

	// Stamp tenant_id when absent; reject values crossing the boundary.
	stmt := db.Statement
	switch stmt.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < stmt.ReflectValue.Len(); i++ {
			if err := stampOrVerify(db, field, stmt.ReflectValue.Index(i), tenantID); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	case reflect.Struct:
		if err := stampOrVerify(db, field, stmt.ReflectValue, tenantID); err != nil {
			_ = db.AddError(err)
		}
	}
}

func (p *ScopePlugin) beforeUpdate(db *gorm.DB) {
	field, tenantID, ok := p.guard(db)
	if !ok || field == nil {
		return
	}

	if crossesTenant(db, field, tenantID) {
		_ = db.AddError(ErrTenantMismatch)
		return
	}
	addTenantPredicate(db, tenantID)
}

func (p *ScopePlugin) beforeDelete(db *gorm.DB) {
	field, tenantID, ok := p.guard(db)
	if !ok || field == nil {
		return
	}
	addTenantPredicate(db, tenantID)
}

// guard resolves the scoping decision for the current statement. The
// returned field is nil for unscoped or exempt models; ok is false when
// the statement must not proceed (error already recorded).
func (p *ScopePlugin) guard(db *gorm.DB) (*schema.Field, string, bool) {
	stmt := db.Statement
	if stmt.Schema == nil {
		return nil, "", true
	}
	if _, exempt := p.exempt[stmt.Schema.ModelType]; exempt {
		return nil, "", true
	}
	field := stmt.Schema.LookUpField(TenantColumn)
	if field == nil {
		return nil, "", true
	}

	tc, _ := tenantctx.From(stmt.Context)
	if !tc.Resolved {
		_ = db.AddError(ErrScopeViolation)
		return nil, "", false
	}
	return field, tc.TenantID, true
}

func addTenantPredicate(db *gorm.DB, tenantID string) {
	db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: TenantColumn},
			Value:  tenantID,
		},
	}})
}

func stampOrVerify(db *gorm.DB, field *schema.Field, rv reflect.Value, tenantID string) error {
	value, isZero := field.ValueOf(db.Statement.Context, rv)
	if isZero {
		return field.Set(db.Statement.Context, rv, tenantID)
	}
	if current, ok := value.(string); ok && current != tenantID {
		return ErrTenantMismatch
	}
	return nil
}

// crossesTenant inspects the update target for an attempt to move a row
// to another tenant.
func crossesTenant(db *gorm.DB, field *schema.Field, tenantID string) bool {
	stmt := db.Statement
	switch dest := stmt.Dest.(type) {
	case map[string]interface{}:
		return mapCrossesTenant(dest, tenantID)
	default:
		rv := reflect.ValueOf(stmt.Dest)
		for rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct || rv.Type() != stmt.Schema.ModelType {
			return false
		}
		value, isZero := field.ValueOf(stmt.Context, rv)
		if isZero {
			return false
		}
		current, ok := value.(string)
		return ok && current != tenantID
	}
}

func mapCrossesTenant(updates map[string]interface{}, tenantID string) bool {
	for key, value := range updates {
		if !strings.EqualFold(key, TenantColumn) && !strings.EqualFold(key, "TenantID") {
			continue
		}
		if s, ok := value.(string); ok && s != tenantID {
			return true
		}
	}
	return false
}
