package database

import (
	"context"
	"reflect"

	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Struct tag values marking the organization column of a tenant-owned model.
// "owner" rows are visible only inside their organization; "shared" rows with a
// NULL organization are additionally readable by every scope except DenyAll.
const (
	tenantTag       = "tenant"
	tenantTagOwner  = "owner"
	tenantTagShared = "shared"
)

// SharedWriteKey, set on a statement with db.Set(SharedWriteKey, true), lets a
// write reach the same rows a read would (marketplace-wide rows included).
// Used for stock movements on behalf of a purchase.
const SharedWriteKey = "tenant:shared_write"

// TenantPlugin restricts every statement on a tenant-owned model to the scope
// carried by the statement's context.
type TenantPlugin struct{}

// NewTenantPlugin creates the plugin; register it with db.Use
func NewTenantPlugin() *TenantPlugin {
	return &TenantPlugin{}
}

// Name implements gorm.Plugin
func (p *TenantPlugin) Name() string {
	return "tenant_scope"
}

// Initialize implements gorm.Plugin
func (p *TenantPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("tenant:query", p.scopeRead); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tenant:row", p.scopeRead); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("tenant:update", p.scopeWrite); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenant:delete", p.scopeWrite); err != nil {
		return err
	}
	return cb.Create().Before("gorm:create").Register("tenant:create", p.stampCreate)
}

// TenantField returns the tenant-tagged field of s and whether its marketplace-wide
// rows are shared, or nil when s is not tenant-owned.
func TenantField(s *schema.Schema) (*schema.Field, bool) {
	if s == nil {
		return nil, false
	}
	for _, f := range s.Fields {
		switch f.Tag.Get(tenantTag) {
		case tenantTagOwner:
			return f, false
		case tenantTagShared:
			return f, true
		}
	}
	return nil, false
}

func (p *TenantPlugin) scopeRead(db *gorm.DB) {
	p.restrict(db, true)
}

func (p *TenantPlugin) scopeWrite(db *gorm.DB) {
	shared, _ := db.Get(SharedWriteKey)
	p.restrict(db, shared == true)
}

func (p *TenantPlugin) restrict(db *gorm.DB, includeShared bool) {
	if db.Error != nil {
		return
	}
	field, shared := TenantField(db.Statement.Schema)
	if field == nil {
		return
	}

	scope := tenant.FromContext(db.Statement.Context)
	if scope.Mode() == tenant.ModeUnrestricted {
		return
	}

	// Hand-written SQL cannot be rewritten; refuse it on tenant-owned tables.
	if db.Statement.SQL.Len() > 0 {
		_ = db.AddError(apperrors.ErrOutsideScope)
		return
	}

	column := clause.Column{Table: clause.CurrentTable, Name: field.DBName}
	var cond clause.Expression = clause.Eq{Column: column, Value: scope.OrganizationID()}
	if shared && includeShared && scope.Mode() == tenant.ModeScoped {
		cond = clause.Or(cond, clause.Eq{Column: column, Value: nil})
	}
	addCondition(db.Statement, cond)
}

// addCondition ANDs cond with the statement's existing WHERE. The existing
// conditions are grouped first so a trailing OR cannot escape the restriction.
func addCondition(stmt *gorm.Statement, cond clause.Expression) {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		stmt.AddClause(clause.Where{Exprs: []clause.Expression{cond}})
		return
	}

	exprs := []clause.Expression{cond}
	if where, ok := c.Expression.(clause.Where); ok && len(where.Exprs) > 0 {
		exprs = []clause.Expression{clause.And(where.Exprs...), cond}
	}
	c.Expression = clause.Where{Exprs: exprs}
	stmt.Clauses["WHERE"] = c
}

func (p *TenantPlugin) stampCreate(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	field, _ := TenantField(db.Statement.Schema)
	if field == nil {
		return
	}

	scope := tenant.FromContext(db.Statement.Context)
	switch scope.Mode() {
	case tenant.ModeUnrestricted:
		return
	case tenant.ModeScoped:
	default:
		_ = db.AddError(apperrors.ErrOutsideScope)
		return
	}

	ctx := db.Statement.Context
	orgID := scope.OrganizationID()
	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := stamp(ctx, field, reflect.Indirect(rv.Index(i)), orgID); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	case reflect.Struct:
		if err := stamp(ctx, field, rv, orgID); err != nil {
			_ = db.AddError(err)
		}
	}
}

func stamp(ctx context.Context, field *schema.Field, rv reflect.Value, orgID uuid.UUID) error {
	value, zero := field.ValueOf(ctx, rv)
	if !zero {
		switch current := value.(type) {
		case *uuid.UUID:
			if current != nil && *current != uuid.Nil {
				if *current != orgID {
					return apperrors.ErrOutsideScope
				}
				return nil
			}
		case uuid.UUID:
			if current != uuid.Nil {
				if current != orgID {
					return apperrors.ErrOutsideScope
				}
				return nil
			}
		}
	}

	if field.FieldType.Kind() == reflect.Ptr {
		id := orgID
		return field.Set(ctx, rv, &id)
	}
	return field.Set(ctx, rv, orgID)
}
