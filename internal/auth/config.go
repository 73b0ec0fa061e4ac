package auth

import (
	"fmt"
	"time"
)

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

// NewAuthConfig builds an AuthConfig with defaults for unset values
func NewAuthConfig(secret string, ttl time.Duration) *AuthConfig {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthConfig{
		JWTSecret: secret,
		TokenTTL:  ttl,
		Issuer:    "marketplace-backend",
	}
}

// ValidateConfig validates the authentication configuration
func (c *AuthConfig) ValidateConfig() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	return nil
}
