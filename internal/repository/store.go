package repository

import (
	"context"

	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tenantColumn is the organization column shared by every tenant-owned table
const tenantColumn = "organization_id"

// ScopedStore is the generic data access used by the entity repositories.
// Tenant filtering itself happens in database.TenantPlugin; the store only makes
// sure every statement carries the caller's context.
type ScopedStore[T any] struct {
	db *gorm.DB
}

// NewScopedStore creates a store for T
func NewScopedStore[T any](db *gorm.DB) ScopedStore[T] {
	return ScopedStore[T]{db: db}
}

func (s ScopedStore[T]) conn(ctx context.Context) *gorm.DB {
	return conn(ctx, s.db)
}

func byID(id uuid.UUID) clause.Expression {
	return clause.Eq{Column: clause.PrimaryColumn, Value: id}
}

// FindByID returns gorm.ErrRecordNotFound when the row is missing or out of scope
func (s ScopedStore[T]) FindByID(ctx context.Context, id uuid.UUID, scopes ...func(*gorm.DB) *gorm.DB) (*T, error) {
	var entity T
	if err := s.conn(ctx).Scopes(scopes...).Where(byID(id)).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindAll returns every visible row after applying scopes
func (s ScopedStore[T]) FindAll(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	var entities []T
	if err := s.conn(ctx).Scopes(scopes...).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// Page returns one page of visible rows and the visible total
func (s ScopedStore[T]) Page(ctx context.Context, limit, offset int, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var entities []T
	var total int64

	if err := s.conn(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.conn(ctx).
		Scopes(scopes...).
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "created_at"}}).
		Limit(limit).
		Offset(offset).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// Create inserts entity. Inside a SCOPED context the row is stamped with the
// scope organization.
func (s ScopedStore[T]) Create(ctx context.Context, entity *T) error {
	return s.conn(ctx).Omit(clause.Associations).Create(entity).Error
}

// Update writes columns of entity to the row with id; no columns means every
// column. Outside an UNRESTRICTED scope the organization column is left untouched
// so rows cannot be moved between tenants. Returns gorm.ErrRecordNotFound when no
// visible row matched.
func (s ScopedStore[T]) Update(ctx context.Context, id uuid.UUID, entity *T, columns []string) error {
	omit := []string{"id", "created_at", clause.Associations}
	if tenant.FromContext(ctx).Mode() != tenant.ModeUnrestricted {
		omit = append(omit, tenantColumn)
	}

	selected := []interface{}{"*"}
	if len(columns) > 0 {
		selected = make([]interface{}, len(columns))
		for i, c := range columns {
			selected[i] = c
		}
	}

	result := s.conn(ctx).
		Model(new(T)).
		Where(byID(id)).
		Select(selected[0], selected[1:]...).
		Omit(omit...).
		Updates(entity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the row with id, returning gorm.ErrRecordNotFound when no visible row matched
func (s ScopedStore[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.conn(ctx).Where(byID(id)).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExistsByID reports whether a row with id is visible in the current scope
func (s ScopedStore[T]) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := s.conn(ctx).Model(new(T)).Where(byID(id)).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
