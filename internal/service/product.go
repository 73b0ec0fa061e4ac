package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/logger"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/tenant"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarketplaceName labels products that belong to no organization
const MarketplaceName = "Marketplace"

// ProductService handles business logic for the catalog
type ProductService struct {
	products  repository.ProductRepositoryInterface
	orgs      repository.OrganizationRepositoryInterface
	validator *validator.Validate
}

// NewProductService creates a new product service
func NewProductService(products repository.ProductRepositoryInterface, orgs repository.OrganizationRepositoryInterface, validator *validator.Validate) *ProductService {
	return &ProductService{
		products:  products,
		orgs:      orgs,
		validator: validator,
	}
}

// CreateProductRequest represents the request to create a product
type CreateProductRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=200" example:"Ração Premium 10kg"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price" swaggertype:"string" example:"89.90"`
	Quantity       int             `json:"quantity" validate:"min=0" example:"10"`
	Category       string          `json:"category,omitempty" example:"ALIMENTO"`
	ImageURL       string          `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty"`
}

// UpdateProductRequest represents a partial product update. Absent fields are kept.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" swaggertype:"string"`
	Quantity    *int             `json:"quantity,omitempty" validate:"omitempty,min=0"`
	Category    *string          `json:"category,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

// ProductResponse represents a product as returned by the API
type ProductResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price" swaggertype:"string" example:"89.90"`
	Quantity         int             `json:"quantity"`
	Category         string          `json:"category"`
	ImageURL         string          `json:"image_url"`
	OrganizationID   *uuid.UUID      `json:"organization_id"`
	OrganizationName string          `json:"organization_name"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

func parseCategory(raw string) (models.ProductCategory, error) {
	if strings.TrimSpace(raw) == "" {
		return models.CategoryOutro, nil
	}
	category, ok := models.ParseCategory(raw)
	if !ok {
		return "", apperrors.NewValidationError("category", fmt.Sprintf("unknown category %q", raw))
	}
	return category, nil
}

// Create adds a product to the catalog. Managers always create in their own
// organization; administrators may pick one or leave it marketplace-wide.
func (s *ProductService) Create(ctx context.Context, principal tenant.Principal, req *CreateProductRequest) (*ProductResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}
	category, err := parseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Category:    category,
		ImageURL:    req.ImageURL,
	}

	switch principal.Role {
	case models.RoleAdmin:
		if req.OrganizationID != nil {
			if _, err := s.orgs.GetByID(ctx, *req.OrganizationID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.ErrOrganizationNotFound
				}
				return nil, fmt.Errorf("failed to get organization: %w", err)
			}
			orgID := *req.OrganizationID
			product.OrganizationID = &orgID
		}
	case models.RoleManager:
		if !principal.HasOrganization() {
			return nil, apperrors.ErrForbidden
		}
		if req.OrganizationID != nil && *req.OrganizationID != *principal.OrganizationID {
			return nil, apperrors.ErrCrossTenantWrite
		}
		orgID := *principal.OrganizationID
		product.OrganizationID = &orgID
	default:
		return nil, apperrors.ErrForbidden
	}

	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, apperrors.ErrOutsideScope) {
			return nil, apperrors.ErrCrossTenantWrite
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.WithContext(ctx).WithField("product_id", product.ID.String()).Info("product created")
	return s.GetByID(ctx, product.ID)
}

// GetByID retrieves a product visible in the current scope
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return toProductResponse(product), nil
}

// editable loads the product and checks the principal may change it
func (s *ProductService) editable(ctx context.Context, principal tenant.Principal, id uuid.UUID) (*models.Product, error) {
	switch principal.Role {
	case models.RoleAdmin, models.RoleManager:
	default:
		return nil, apperrors.ErrForbidden
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if principal.Role == models.RoleManager && product.OrganizationID == nil {
		return nil, apperrors.ErrMarketplaceProductLocked
	}
	return product, nil
}

// Update applies the present fields of req to the product
func (s *ProductService) Update(ctx context.Context, principal tenant.Principal, id uuid.UUID, req *UpdateProductRequest) (*ProductResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	product, err := s.editable(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	var columns []string
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
		columns = append(columns, "name")
	}
	if req.Description != nil {
		product.Description = *req.Description
		columns = append(columns, "description")
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return nil, err
		}
		product.Price = *req.Price
		columns = append(columns, "price")
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
		columns = append(columns, "quantity")
	}
	if req.Category != nil {
		category, err := parseCategory(*req.Category)
		if err != nil {
			return nil, err
		}
		product.Category = category
		columns = append(columns, "category")
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
		columns = append(columns, "image_url")
	}

	if len(columns) == 0 {
		return toProductResponse(product), nil
	}

	if err := s.products.Update(ctx, product, columns); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a product that no order references
func (s *ProductService) Delete(ctx context.Context, principal tenant.Principal, id uuid.UUID) error {
	if _, err := s.editable(ctx, principal, id); err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.ErrProductNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return apperrors.NewValidationError("product", "product is referenced by existing orders")
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger.WithContext(ctx).WithField("product_id", id.String()).Info("product deleted")
	return nil
}

func toProductResponse(product *models.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:               product.ID,
		Name:             product.Name,
		Description:      product.Description,
		Price:            product.Price,
		Quantity:         product.Quantity,
		Category:         string(product.Category),
		ImageURL:         product.ImageURL,
		OrganizationID:   product.OrganizationID,
		OrganizationName: MarketplaceName,
		CreatedAt:        formatTime(product.CreatedAt),
		UpdatedAt:        formatTime(product.UpdatedAt),
	}
	if product.OrganizationID != nil {
		resp.OrganizationName = ""
		if product.Organization != nil {
			resp.OrganizationName = product.Organization.Name
		}
	}
	return resp
}

func toProductResponses(products []models.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, *toProductResponse(&products[i]))
	}
	return responses
}
