package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backend/internal/cart"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/tenant"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService manages the shopping cart of the authenticated user
type CartService struct {
	store     cart.Store
	products  repository.ProductRepositoryInterface
	validator *validator.Validate
}

// NewCartService creates a new cart service
func NewCartService(store cart.Store, products repository.ProductRepositoryInterface, validator *validator.Validate) *CartService {
	return &CartService{
		store:     store,
		products:  products,
		validator: validator,
	}
}

// AddCartItemRequest represents the request to add units of a product to the cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0" example:"1"`
}

// CartLine is one cart item enriched with live product data
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal" swaggertype:"string"`
	InStock   bool            `json:"in_stock"`
	Available bool            `json:"available"`
}

// CartResponse is the cart as returned by the API. Unavailable lines are not totaled.
type CartResponse struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total" swaggertype:"string"`
}

// CartKey is the store key of the principal's cart
func CartKey(principal tenant.Principal) string {
	return principal.UserID.String()
}

func cartKey(principal tenant.Principal) (string, error) {
	if principal.IsAnonymous() {
		return "", apperrors.ErrNotAuthenticated
	}
	return CartKey(principal), nil
}

// Get returns the principal's cart
func (s *CartService) Get(ctx context.Context, principal tenant.Principal) (*CartResponse, error) {
	key, err := cartKey(principal)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// AddItem adds req.Quantity units of a visible product. The cart never holds
// more units of a product than are in stock.
func (s *CartService) AddItem(ctx context.Context, principal tenant.Principal, req *AddCartItemRequest) (*CartResponse, error) {
	key, err := cartKey(principal)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	c, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	wanted := c.Quantity(req.ProductID) + req.Quantity
	if wanted > product.Quantity {
		return nil, apperrors.NewInsufficientStockError(product.ID, product.Name, wanted, product.Quantity)
	}

	c.Add(req.ProductID, req.Quantity)
	if err := s.store.Save(ctx, key, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.view(ctx, c)
}

// RemoveItem drops a product from the cart. Removing an absent product is not an error.
func (s *CartService) RemoveItem(ctx context.Context, principal tenant.Principal, productID uuid.UUID) (*CartResponse, error) {
	key, err := cartKey(principal)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	c.Remove(productID)
	if err := s.store.Save(ctx, key, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.view(ctx, c)
}

// Clear empties the principal's cart
func (s *CartService) Clear(ctx context.Context, principal tenant.Principal) error {
	key, err := cartKey(principal)
	if err != nil {
		return err
	}
	if err := s.store.Clear(ctx, key); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) load(ctx context.Context, key string) (*cart.Cart, error) {
	c, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c == nil {
		c = &cart.Cart{}
	}
	return c, nil
}

func (s *CartService) view(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	resp := &CartResponse{Items: []CartLine{}, Total: decimal.Zero}
	if c.IsEmpty() {
		return resp, nil
	}

	for _, item := range c.Items {
		line := CartLine{ProductID: item.ProductID, Quantity: item.Quantity}

		product, err := s.products.GetByID(ctx, item.ProductID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to get product: %w", err)
		default:
			line.Name = product.Name
			line.UnitPrice = product.Price
			line.Subtotal = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.InStock = product.Quantity >= item.Quantity
			line.Available = true
			resp.Total = resp.Total.Add(line.Subtotal)
		}
		resp.Items = append(resp.Items, line)
	}
	return resp, nil
}
