package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/tenant"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRepository defines the user lookup needed by the auth service
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService issues and validates access tokens
type AuthService struct {
	config   *AuthConfig
	userRepo UserRepository
}

// AuthClaims represents JWT token claims
type AuthClaims struct {
	UserID               string `json:"user_id" example:"2b5f3c0e-8d7a-4b7e-9c1a-3f6d2e1a0b9c"`
	Username             string `json:"username" example:"maria"`
	Role                 string `json:"role" example:"MANAGER"`
	OrganizationID       string `json:"organization_id,omitempty" example:"7c1e4b2a-0f3d-4e5a-8b9c-1d2e3f4a5b6c"`
	jwt.RegisteredClaims `swaggerignore:"true"`
}

// Identity converts the claims into the identity the tenant resolver reads
func (c *AuthClaims) Identity() *tenant.Identity {
	return &tenant.Identity{
		UserID:         c.UserID,
		Username:       c.Username,
		Role:           c.Role,
		OrganizationID: c.OrganizationID,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType" example:"bearer"`
	ExpiresIn   int64       `json:"expiresIn" example:"3600"`
	Profile     UserProfile `json:"profile"`
}

// UserProfile is the public view of the logged in user
type UserProfile struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Role           string     `json:"role"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
}

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig, userRepo UserRepository) (*AuthService, error) {
	if err := config.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("invalid auth config: %w", err)
	}
	return &AuthService{config: config, userRepo: userRepo}, nil
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks the credentials and issues a token. The lookup runs unscoped
// because the caller's organization is not known until the user is found.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(tenant.System(ctx), username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.config.TokenTTL.Seconds()),
		Profile:     ProfileOf(user),
	}, nil
}

// Me returns the current profile of the authenticated principal
func (s *AuthService) Me(ctx context.Context, principal tenant.Principal) (*UserProfile, error) {
	if principal.IsAnonymous() {
		return nil, apperrors.ErrNotAuthenticated
	}
	user, err := s.userRepo.GetByID(tenant.System(ctx), principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	profile := ProfileOf(user)
	return &profile, nil
}

// ProfileOf builds the public profile of user
func ProfileOf(user *models.User) UserProfile {
	return UserProfile{
		ID:             user.ID,
		Username:       user.Username,
		Role:           string(user.Role),
		OrganizationID: user.OrganizationID,
	}
}

// GenerateJWT generates a signed token for user
func (s *AuthService) GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &AuthClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
			Subject:   user.ID.String(),
		},
	}
	if user.OrganizationID != nil {
		claims.OrganizationID = user.OrganizationID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// ValidateJWT validates and parses a JWT token
func (s *AuthService) ValidateJWT(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*AuthClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}
