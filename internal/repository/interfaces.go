package repository

import (
	"context"

	"marketplace-backend/internal/database/models"
	"marketplace-backend/internal/search"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// OrganizationRepositoryInterface defines the interface for organization repository operations
type OrganizationRepositoryInterface interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetByName(ctx context.Context, name string) (*models.Organization, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.Organization, int64, error)
	Update(ctx context.Context, org *models.Organization) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepositoryInterface defines the interface for product repository operations
type ProductRepositoryInterface interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Find(ctx context.Context, q search.Query) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product, columns []string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, n int) error
}

// OrderRepositoryInterface defines the interface for order repository operations
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.Order, int64, error)
}

// TxManagerInterface runs a unit of work in one transaction
type TxManagerInterface interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Ensure implementations satisfy the interfaces
var (
	_ OrganizationRepositoryInterface = (*OrganizationRepository)(nil)
	_ UserRepositoryInterface         = (*UserRepository)(nil)
	_ ProductRepositoryInterface      = (*ProductRepository)(nil)
	_ OrderRepositoryInterface        = (*OrderRepository)(nil)
	_ TxManagerInterface              = (*TxManager)(nil)
)
