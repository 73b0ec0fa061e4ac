package repository

import (
	"context"
	"errors"

	"marketplace-backend/internal/database"
	"marketplace-backend/internal/database/models"
	"marketplace-backend/internal/search"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockConflict is returned by DecrementStock when the row no longer holds enough units
var ErrStockConflict = errors.New("stock changed concurrently")

// ProductRepository handles database operations for products
type ProductRepository struct {
	store ScopedStore[models.Product]
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{store: NewScopedStore[models.Product](db)}
}

func withOrganization(db *gorm.DB) *gorm.DB {
	return db.Preload("Organization")
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.store.Create(ctx, product)
}

// GetByID retrieves a visible product with its organization
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.store.FindByID(ctx, id, withOrganization)
}

// Find returns the visible products matching q in q's order
func (r *ProductRepository) Find(ctx context.Context, q search.Query) ([]models.Product, error) {
	return r.store.FindAll(ctx, QueryScope(q), withOrganization)
}

// Update writes the named columns of product; nil columns writes them all.
// Stock is only written when "quantity" is named, so an edit never replays a
// quantity read before a concurrent checkout.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product, columns []string) error {
	return r.store.Update(ctx, product.ID, product, columns)
}

// Delete deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, id)
}

// Exists reports whether the product is visible in the current scope
func (r *ProductRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.ExistsByID(ctx, id)
}

// LockForUpdate reads a visible product and holds a row lock until the
// surrounding transaction ends. Must be called inside TxManager.WithinTransaction.
func (r *ProductRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := conn(ctx, r.store.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(byID(id)).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock removes n units from a visible product. The update is guarded by
// quantity >= n so stock never goes negative; ErrStockConflict means it would have.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, n int) error {
	result := conn(ctx, r.store.db).
		Set(database.SharedWriteKey, true).
		Model(&models.Product{}).
		Where(byID(id)).
		Where(clause.Gte{Column: column("quantity"), Value: n}).
		Update("quantity", gorm.Expr("quantity - ?", n))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}
