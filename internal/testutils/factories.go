package testutils

import (
	"fmt"
	"time"

	"marketplace-backend/internal/database/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrganizationFactory provides methods to create test Organization data
type OrganizationFactory struct{}

// NewOrganizationFactory creates a new OrganizationFactory
func NewOrganizationFactory() *OrganizationFactory {
	return &OrganizationFactory{}
}

// Create creates a test Organization with default values
func (f *OrganizationFactory) Create() *models.Organization {
	return &models.Organization{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:        "Pet Shop " + uuid.NewString()[:8],
		Description: "A test organization",
	}
}

// WithName sets a custom name for the organization
func (f *OrganizationFactory) WithName(name string) *models.Organization {
	org := f.Create()
	org.Name = name
	return org
}

// UserFactory provides methods to create test User data
type UserFactory struct{}

// NewUserFactory creates a new UserFactory
func NewUserFactory() *UserFactory {
	return &UserFactory{}
}

// Create creates a MEMBER user without an organization
func (f *UserFactory) Create() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Username:     "user-" + uuid.NewString()[:8],
		PasswordHash: "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva",
		Role:         models.RoleMember,
	}
}

// WithRole creates a user with the given role belonging to orgID (nil for admins)
func (f *UserFactory) WithRole(role models.Role, orgID *uuid.UUID) *models.User {
	u := f.Create()
	u.Role = role
	u.OrganizationID = orgID
	return u
}

// ProductFactory provides methods to create test Product data
type ProductFactory struct{}

// NewProductFactory creates a new ProductFactory
func NewProductFactory() *ProductFactory {
	return &ProductFactory{}
}

// Create creates a marketplace-wide product with stock
func (f *ProductFactory) Create() *models.Product {
	return &models.Product{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:        "Ração Premium",
		Description: "Ração para cães adultos",
		Price:       decimal.RequireFromString("89.90"),
		Quantity:    10,
		Category:    models.CategoryAlimento,
	}
}

// WithOrganization creates a product owned by orgID
func (f *ProductFactory) WithOrganization(orgID uuid.UUID) *models.Product {
	p := f.Create()
	id := orgID
	p.OrganizationID = &id
	return p
}

// With creates a product with the given name, category, price and stock
func (f *ProductFactory) With(name string, category models.ProductCategory, price string, quantity int) *models.Product {
	p := f.Create()
	p.Name = name
	p.Description = fmt.Sprintf("%s (%s)", name, category)
	p.Category = category
	p.Price = decimal.RequireFromString(price)
	p.Quantity = quantity
	return p
}

// OrderFactory provides methods to create test Order data
type OrderFactory struct{}

// NewOrderFactory creates a new OrderFactory
func NewOrderFactory() *OrderFactory {
	return &OrderFactory{}
}

// For creates an order of user containing one item per product with quantity 1
func (f *OrderFactory) For(user *models.User, products ...*models.Product) *models.Order {
	order := &models.Order{
		BaseModel:      models.BaseModel{ID: uuid.New()},
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
	}
	for _, p := range products {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: p.ID,
			Quantity:  1,
			UnitPrice: p.Price,
		})
	}
	return order
}

// FactorySet contains all factories for easy access
type FactorySet struct {
	Organization *OrganizationFactory
	User         *UserFactory
	Product      *ProductFactory
	Order        *OrderFactory
}

// NewFactorySet creates a new set of all factories
func NewFactorySet() *FactorySet {
	return &FactorySet{
		Organization: NewOrganizationFactory(),
		User:         NewUserFactory(),
		Product:      NewProductFactory(),
		Order:        NewOrderFactory(),
	}
}
