package repository

import (
	"context"

	"marketplace-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository handles database operations for orders
type OrderRepository struct {
	store ScopedStore[models.Order]
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{store: NewScopedStore[models.Order](db)}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items.Product")
}

// Create inserts the order together with its items
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return conn(ctx, r.store.db).Omit("User").Create(order).Error
}

// GetByID retrieves a visible order with its items
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.store.FindByID(ctx, id, withItems)
}

// GetAll retrieves visible orders, oldest first, with pagination
func (r *OrderRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Order, int64, error) {
	return r.store.Page(ctx, limit, offset, withItems)
}
