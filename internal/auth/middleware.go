package auth

import (
	"net/http"
	"strings"

	"marketplace-backend/internal/database/models"
	"marketplace-backend/internal/tenant"

	"github.com/gin-gonic/gin"
)

// AuthClaimsKey is the gin key holding the validated *AuthClaims
const AuthClaimsKey = "auth_claims"

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateJWT(tokenString string) (*AuthClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader {
		return "", false
	}
	return tokenString, true
}

// OptionalAuth validates a bearer token if present. Requests without a valid
// token continue as anonymous.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := m.validator.ValidateJWT(tokenString); err == nil {
				c.Set(AuthClaimsKey, claims)
				c.Set(tenant.IdentityKey, claims.Identity())
			}
		}
		c.Next()
	}
}

// RequireAuthenticated rejects requests whose resolved principal is anonymous.
// Must run after tenant.Guard.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenant.GetPrincipal(c).IsAnonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole allows only principals with one of roles. Must run after tenant.Guard.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := tenant.GetPrincipal(c)
		if principal.IsAnonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}
