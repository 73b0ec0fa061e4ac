package service

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
	"marketplace-backend/internal/tenant"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService handles business logic for users
type UserService struct {
	users     repository.UserRepositoryInterface
	orgs      repository.OrganizationRepositoryInterface
	validator *validator.Validate
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepositoryInterface, orgs repository.OrganizationRepositoryInterface, validator *validator.Validate) *UserService {
	return &UserService{
		users:     users,
		orgs:      orgs,
		validator: validator,
	}
}

// RegisterRequest represents a public sign-up as a member of an existing organization
type RegisterRequest struct {
	Username       string    `json:"username" validate:"required,min=3,max=100" example:"maria"`
	Password       string    `json:"password" validate:"required,min=6,max=72"`
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
}

// CreateUserRequest represents the request to create a user with any role
type CreateUserRequest struct {
	Username       string     `json:"username" validate:"required,min=3,max=100"`
	Password       string     `json:"password" validate:"required,min=6,max=72"`
	Role           string     `json:"role" validate:"required" example:"MANAGER"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
}

// UserResponse represents a user as returned by the API
type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Username         string     `json:"username"`
	Role             string     `json:"role"`
	OrganizationID   *uuid.UUID `json:"organization_id"`
	OrganizationName string     `json:"organization_name,omitempty"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users    []UserResponse `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Register creates a MEMBER of an existing organization. It runs before the
// caller has any tenant, so lookups and the insert are unscoped.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	orgID := req.OrganizationID
	user := &models.User{
		Username:       strings.TrimSpace(req.Username),
		Role:           models.RoleMember,
		OrganizationID: &orgID,
	}
	return s.create(tenant.System(ctx), user, req.Password)
}

// Create creates a user with an explicit role. Administrators belong to no
// organization; managers and members must belong to one.
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, apperrors.NewValidationError("role", fmt.Sprintf("unknown role %q", req.Role))
	}

	switch role {
	case models.RoleAdmin:
		if req.OrganizationID != nil {
			return nil, apperrors.NewValidationError("organization_id", "administrators cannot belong to an organization")
		}
	case models.RoleManager, models.RoleMember:
		if req.OrganizationID == nil {
			return nil, apperrors.NewValidationError("organization_id", "required for role "+string(role))
		}
	}

	user := &models.User{
		Username:       strings.TrimSpace(req.Username),
		Role:           role,
		OrganizationID: req.OrganizationID,
	}
	return s.create(ctx, user, req.Password)
}

func (s *UserService) create(ctx context.Context, user *models.User, password string) (*UserResponse, error) {
	var org *models.Organization
	if user.OrganizationID != nil {
		var err error
		org, err = s.orgs.GetByID(ctx, *user.OrganizationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrOrganizationNotFound
			}
			return nil, fmt.Errorf("failed to get organization: %w", err)
		}
	}

	// Usernames are unique across all organizations
	existing, err := s.users.GetByUsername(tenant.System(ctx), user.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, apperrors.ErrUserExists
		case errors.Is(err, apperrors.ErrOutsideScope):
			return nil, apperrors.ErrCrossTenantWrite
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.Organization = org
	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"new_user": user.Username,
		"role":     string(user.Role),
	}).Info("user created")
	return toUserResponse(user), nil
}

// List returns the users visible in the current scope
func (s *UserService) List(ctx context.Context, page, pageSize int) (*UserListResponse, error) {
	limit, offset, page, pageSize := paginate(page, pageSize)

	users, total, err := s.users.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = *toUserResponse(&users[i])
	}
	return &UserListResponse{
		Users:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetByID retrieves a user visible in the current scope
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUserResponse(user), nil
}

// Delete removes a user visible in the current scope
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.ErrUserNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return apperrors.NewValidationError("user", "user has orders and cannot be deleted")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func toUserResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Role:           string(user.Role),
		OrganizationID: user.OrganizationID,
		CreatedAt:      formatTime(user.CreatedAt),
		UpdatedAt:      formatTime(user.UpdatedAt),
	}
	if user.Organization != nil {
		resp.OrganizationName = user.Organization.Name
	}
	return resp
}
