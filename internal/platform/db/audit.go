package db

import (
	"reflect"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AuditStamper sets created_at/updated_at on save. Detection is by
// capability: any model whose schema carries both columns is stamped,
// everything else is skipped.
type AuditStamper struct {
	// Now overrides the clock in tests.
	Now func() time.Time
}

func (s *AuditStamper) Name() string {
	return "atrium:audit_stamp"
}

func (s *AuditStamper) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("atrium:audit_create", s.beforeCreate); err != nil {
		return err
	}
	return db.Callback().Update().Before("gorm:update").Register("atrium:audit_update", s.beforeUpdate)
}

func (s *AuditStamper) beforeCreate(db *gorm.DB) {
	createdAt, updatedAt, ok := auditFields(db)
	if !ok {
		return
	}
	now := s.now()
	stmt := db.Statement
	switch stmt.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < stmt.ReflectValue.Len(); i++ {
			stampTime(db, createdAt, stmt.ReflectValue.Index(i), now)
			stampTime(db, updatedAt, stmt.ReflectValue.Index(i), now)
		}
	case reflect.Struct:
		stampTime(db, createdAt, stmt.ReflectValue, now)
		stampTime(db, updatedAt, stmt.ReflectValue, now)
	}
}

func (s *AuditStamper) beforeUpdate(db *gorm.DB) {
	_, updatedAt, ok := auditFields(db)
	if !ok || updatedAt == nil {
		return
	}
	db.Statement.SetColumn(updatedAt.DBName, s.now(), true)
}

func (s *AuditStamper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func auditFields(db *gorm.DB) (createdAt, updatedAt *schema.Field, ok bool) {
	if db.Statement.Schema == nil {
		return nil, nil, false
	}
	createdAt = db.Statement.Schema.LookUpField("created_at")
	updatedAt = db.Statement.Schema.LookUpField("updated_at")
	if createdAt == nil || updatedAt == nil {
		return nil, nil, false
	}
	return createdAt, updatedAt, true
}

func stampTime(db *gorm.DB, field *schema.Field, rv reflect.Value, now time.Time) {
	_ = field.Set(db.Statement.Context, rv, now)
}
