package service

import (
	"context"

	"marketplace-backend/internal/search"
	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/service_mocks.go -package=mocks

// Translator turns a free-text shopping query into search filters
type Translator interface {
	Translate(ctx context.Context, query string) (*Translation, error)
}

// ProductServiceInterface defines the interface for catalog management
type ProductServiceInterface interface {
	Create(ctx context.Context, principal tenant.Principal, req *CreateProductRequest) (*ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error)
	Update(ctx context.Context, principal tenant.Principal, id uuid.UUID, req *UpdateProductRequest) (*ProductResponse, error)
	Delete(ctx context.Context, principal tenant.Principal, id uuid.UUID) error
}

// SearchServiceInterface defines the interface for product search
type SearchServiceInterface interface {
	ManualSearch(ctx context.Context, filters search.SearchFilters) ([]ProductResponse, error)
	NaturalLanguageSearch(ctx context.Context, query string) (*AISearchResponse, error)
}

// CartServiceInterface defines the interface for the shopping cart
type CartServiceInterface interface {
	Get(ctx context.Context, principal tenant.Principal) (*CartResponse, error)
	AddItem(ctx context.Context, principal tenant.Principal, req *AddCartItemRequest) (*CartResponse, error)
	RemoveItem(ctx context.Context, principal tenant.Principal, productID uuid.UUID) (*CartResponse, error)
	Clear(ctx context.Context, principal tenant.Principal) error
}

// CheckoutServiceInterface defines the interface for turning a cart into an order
type CheckoutServiceInterface interface {
	Process(ctx context.Context, cartKey string, buyer tenant.Principal) (*OrderResponse, error)
}

// OrderServiceInterface defines the interface for order queries
type OrderServiceInterface interface {
	List(ctx context.Context, page, pageSize int) (*OrderListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error)
}

// UserServiceInterface defines the interface for user service
type UserServiceInterface interface {
	Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error)
	Create(ctx context.Context, req *CreateUserRequest) (*UserResponse, error)
	List(ctx context.Context, page, pageSize int) (*UserListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrganizationServiceInterface defines the interface for organization service
type OrganizationServiceInterface interface {
	Create(ctx context.Context, req *CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error)
	GetAll(ctx context.Context, page, pageSize int) (*OrganizationListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateOrganizationRequest) (*OrganizationResponse, error)
}

// Ensure implementations satisfy the interfaces
var (
	_ Translator                   = (*GeminiTranslator)(nil)
	_ Translator                   = NoopTranslator{}
	_ ProductServiceInterface      = (*ProductService)(nil)
	_ SearchServiceInterface       = (*SearchService)(nil)
	_ CartServiceInterface         = (*CartService)(nil)
	_ CheckoutServiceInterface     = (*CheckoutService)(nil)
	_ OrderServiceInterface        = (*OrderService)(nil)
	_ UserServiceInterface         = (*UserService)(nil)
	_ OrganizationServiceInterface = (*OrganizationService)(nil)
)
