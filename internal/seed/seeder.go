package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace-backend/internal/auth"
	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/logger"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/search"
	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeder creates bootstrap data. Every operation runs unscoped and skips rows
// that already exist, so it is safe to run on each start.
type Seeder struct {
	orgs     repository.OrganizationRepositoryInterface
	users    repository.UserRepositoryInterface
	products repository.ProductRepositoryInterface
}

// NewSeeder creates a new seeder
func NewSeeder(orgs repository.OrganizationRepositoryInterface, users repository.UserRepositoryInterface, products repository.ProductRepositoryInterface) *Seeder {
	return &Seeder{orgs: orgs, users: users, products: products}
}

// Result counts the rows a run created
type Result struct {
	OrganizationsCreated int
	ProductsCreated      int
	UsersCreated         int
}

// EnsureAdmin creates the administrator account if no user has that username
func (s *Seeder) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, apperrors.NewConfigurationError("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}

	created, err := s.ensureUser(tenant.System(ctx), UserData{Username: username, Password: password, Role: string(models.RoleAdmin)}, nil)
	if err != nil {
		return false, err
	}
	if created {
		logger.WithContext(ctx).WithField("username", username).Info("administrator account created")
	}
	return created, nil
}

// Apply writes the catalog. Organizations are matched by name, users by
// username and products by name within their organization.
func (s *Seeder) Apply(ctx context.Context, catalog *Catalog) (*Result, error) {
	ctx = tenant.System(ctx)
	result := &Result{}

	orgIDs := make(map[string]uuid.UUID, len(catalog.Organizations))
	for _, data := range catalog.Organizations {
		org, created, err := s.ensureOrganization(ctx, data)
		if err != nil {
			return result, fmt.Errorf("organization %q: %w", data.Name, err)
		}
		orgIDs[org.Name] = org.ID
		if created {
			result.OrganizationsCreated++
		}
	}

	for _, data := range catalog.Products {
		orgID, err := s.resolveOrganization(ctx, data.Organization, orgIDs)
		if err != nil {
			return result, fmt.Errorf("product %q: %w", data.Name, err)
		}
		created, err := s.ensureProduct(ctx, data, orgID)
		if err != nil {
			return result, fmt.Errorf("product %q: %w", data.Name, err)
		}
		if created {
			result.ProductsCreated++
		}
	}

	for _, data := range catalog.Users {
		orgID, err := s.resolveOrganization(ctx, data.Organization, orgIDs)
		if err != nil {
			return result, fmt.Errorf("user %q: %w", data.Username, err)
		}
		created, err := s.ensureUser(ctx, data, orgID)
		if err != nil {
			return result, fmt.Errorf("user %q: %w", data.Username, err)
		}
		if created {
			result.UsersCreated++
		}
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"organizations_created": result.OrganizationsCreated,
		"products_created":      result.ProductsCreated,
		"users_created":         result.UsersCreated,
	}).Info("catalog seeded")

	return result, nil
}

func (s *Seeder) ensureOrganization(ctx context.Context, data OrganizationData) (*models.Organization, bool, error) {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return nil, false, apperrors.NewValidationError("name", "organization name is required")
	}

	existing, err := s.orgs.GetByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to query organization: %w", err)
	}

	org := &models.Organization{Name: name, Description: data.Description}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, false, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, true, nil
}

// resolveOrganization maps an organization name to its id. Blank means none.
func (s *Seeder) resolveOrganization(ctx context.Context, name string, known map[string]uuid.UUID) (*uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if id, ok := known[name]; ok {
		return &id, nil
	}

	org, err := s.orgs.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to query organization: %w", err)
	}
	known[name] = org.ID
	return &org.ID, nil
}

func sameOrganization(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Seeder) ensureProduct(ctx context.Context, data ProductData, orgID *uuid.UUID) (bool, error) {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return false, apperrors.NewValidationError("name", "product name is required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(data.Price))
	if err != nil || price.IsNegative() {
		return false, apperrors.NewValidationError("price", "must be a non-negative decimal")
	}
	if data.Quantity < 0 {
		return false, apperrors.NewValidationError("quantity", "must not be negative")
	}

	category := models.CategoryOutro
	if strings.TrimSpace(data.Category) != "" {
		parsed, ok := models.ParseCategory(data.Category)
		if !ok {
			return false, apperrors.NewValidationError("category", "unknown category "+data.Category)
		}
		category = parsed
	}

	candidates, err := s.products.Find(ctx, search.Build(search.SearchFilters{Name: &name}))
	if err != nil {
		return false, fmt.Errorf("failed to query products: %w", err)
	}
	for _, p := range candidates {
		if strings.EqualFold(p.Name, name) && sameOrganization(p.OrganizationID, orgID) {
			return false, nil
		}
	}

	product := &models.Product{
		Name:           name,
		Description:    data.Description,
		Price:          price.Round(2),
		Quantity:       data.Quantity,
		Category:       category,
		ImageURL:       data.ImageURL,
		OrganizationID: orgID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return false, fmt.Errorf("failed to create product: %w", err)
	}
	return true, nil
}

func (s *Seeder) ensureUser(ctx context.Context, data UserData, orgID *uuid.UUID) (bool, error) {
	role, ok := models.ParseRole(data.Role)
	if !ok {
		return false, apperrors.NewValidationError("role", "unknown role "+data.Role)
	}
	if role == models.RoleAdmin && orgID != nil {
		return false, apperrors.NewValidationError("organization", "administrators do not belong to an organization")
	}
	if role != models.RoleAdmin && orgID == nil {
		return false, apperrors.NewValidationError("organization", "required for role "+string(role))
	}

	_, err := s.users.GetByUsername(ctx, data.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to query user: %w", err)
	}

	hash, err := auth.HashPassword(data.Password)
	if err != nil {
		return false, err
	}

	user := &models.User{
		Username:       data.Username,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: orgID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return true, nil
}
