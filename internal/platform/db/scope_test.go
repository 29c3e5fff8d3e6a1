package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type scopedRecord struct {
	ID        string    `gorm:"column:id;primaryKey"`
	TenantID  string    `gorm:"column:tenant_id"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (scopedRecord) TableName() string { return "scoped_records" }

// catalogRecord carries a tenant_id but models the cross-tenant catalog
// itself; it is registered as exempt in the tests below.
type catalogRecord struct {
	TenantID string `gorm:"column:tenant_id;primaryKey"`
	Name     string `gorm:"column:name"`
}

func (catalogRecord) TableName() string { return "catalog_records" }

type unscopedRecord struct {
	ID   string `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

func (unscopedRecord) TableName() string { return "unscoped_records" }

func newDryRunDB(t *testing.T, exemptModels ...any) *gorm.DB {
	t.Helper()
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gdb, err := Open(mockDB, nil, exemptModels...)
	require.NoError(t, err)
	return gdb.Session(&gorm.Session{DryRun: true, SkipDefaultTransaction: true})
}

func TestScopeConjoinsTenantPredicateOnReads(t *testing.T) {
	gdb := newDryRunDB(t)

	var out []scopedRecord
	tx := gdb.WithContext(boundCtx("T1")).Find(&out)
	require.NoError(t, tx.Error)

	assert.Contains(t, tx.Statement.SQL.String(), `"scoped_records"."tenant_id" = $`)
	assert.Contains(t, tx.Statement.Vars, "T1")
}

func TestScopePredicateConjoinedWithCallerFilters(t *testing.T) {
	gdb := newDryRunDB(t)

	var out []scopedRecord
	tx := gdb.WithContext(boundCtx("T1")).Where("name = ?", "alice").Find(&out)
	require.NoError(t, tx.Error)

	sql := tx.Statement.SQL.String()
	assert.Contains(t, sql, "name = $")
	assert.Contains(t, sql, `"scoped_records"."tenant_id" = $`)
	assert.Contains(t, tx.Statement.Vars, "T1")
	assert.Contains(t, tx.Statement.Vars, "alice")
}

func TestScopeRejectsUnresolvedContext(t *testing.T) {
	gdb := newDryRunDB(t)

	var out []scopedRecord
	tx := gdb.WithContext(context.Background()).Find(&out)
	assert.ErrorIs(t, tx.Error, ErrScopeViolation)
}

func TestScopeStampsTenantOnCreate(t *testing.T) {
	gdb := newDryRunDB(t)

	rec := scopedRecord{ID: "r1", Name: "alice"}
	tx := gdb.WithContext(boundCtx("T1")).Create(&rec)
	require.NoError(t, tx.Error)

	assert.Equal(t, "T1", rec.TenantID)
	assert.Contains(t, tx.Statement.Vars, "T1")
}

func TestScopeRejectsCrossTenantCreate(t *testing.T) {
	gdb := newDryRunDB(t)

	rec := scopedRecord{ID: "r1", TenantID: "T2", Name: "alice"}
	tx := gdb.WithContext(boundCtx("T1")).Create(&rec)
	assert.ErrorIs(t, tx.Error, ErrTenantMismatch)
}

func TestScopeAllowsMatchingTenantOnCreate(t *testing.T) {
	gdb := newDryRunDB(t)

	rec := scopedRecord{ID: "r1", TenantID: "T1", Name: "alice"}
	tx := gdb.WithContext(boundCtx("T1")).Create(&rec)
	assert.NoError(t, tx.Error)
}

func TestScopeConjoinsTenantPredicateOnUpdate(t *testing.T) {
	gdb := newDryRunDB(t)

	tx := gdb.WithContext(boundCtx("T1")).
		Model(&scopedRecord{}).
		Where("id = ?", "r1").
		Update("name", "bob")
	require.NoError(t, tx.Error)

	assert.Contains(t, tx.Statement.SQL.String(), `"scoped_records"."tenant_id" = $`)
	assert.Contains(t, tx.Statement.Vars, "T1")
}

func TestScopeRejectsTenantReassignmentOnUpdate(t *testing.T) {
	gdb := newDryRunDB(t)

	tx := gdb.WithContext(boundCtx("T1")).
		Model(&scopedRecord{}).
		Where("id = ?", "r1").
		Updates(map[string]interface{}{"tenant_id": "T2"})
	assert.ErrorIs(t, tx.Error, ErrTenantMismatch)
}

func TestScopeConjoinsTenantPredicateOnDelete(t *testing.T) {
	gdb := newDryRunDB(t)

	tx := gdb.WithContext(boundCtx("T1")).
		Where("id = ?", "r1").
		Delete(&scopedRecord{})
	require.NoError(t, tx.Error)

	assert.Contains(t, tx.Statement.SQL.String(), `"scoped_records"."tenant_id" = $`)
	assert.Contains(t, tx.Statement.Vars, "T1")
}

func TestExemptModelBypassesScoping(t *testing.T) {
	gdb := newDryRunDB(t, &catalogRecord{})

	// The catalog is queried before any tenant is resolved.
	var out []catalogRecord
	tx := gdb.WithContext(context.Background()).Find(&out)
	require.NoError(t, tx.Error)
	assert.NotContains(t, tx.Statement.SQL.String(), `"tenant_id" = $`)
}

func TestModelWithoutTenantColumnIsUnscoped(t *testing.T) {
	gdb := newDryRunDB(t)

	var out []unscopedRecord
	tx := gdb.WithContext(context.Background()).Find(&out)
	require.NoError(t, tx.Error)
	assert.NotContains(t, tx.Statement.SQL.String(), "tenant_id")
}
