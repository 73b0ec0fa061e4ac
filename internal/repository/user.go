package repository

import (
	"context"

	"marketplace-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for users
type UserRepository struct {
	store ScopedStore[models.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{store: NewScopedStore[models.User](db)}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.store.Create(ctx, user)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.store.FindByID(ctx, id, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Organization")
	})
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := conn(ctx, r.store.db).Where(clause.Eq{Column: column("username"), Value: username}).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAll retrieves all visible users with pagination
func (r *UserRepository) GetAll(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	return r.store.Page(ctx, limit, offset)
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.store.Update(ctx, user.ID, user, nil)
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, id)
}
