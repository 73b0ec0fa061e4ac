package tenant

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin context keys
const (
	IdentityKey  = "tenant_identity"
	PrincipalKey = "tenant_principal"
	ScopeKey     = "tenant_scope"
)

// ResolveFromGin resolves the principal from the identity stored by the auth middleware
func ResolveFromGin(c *gin.Context) Principal {
	raw, exists := c.Get(IdentityKey)
	if !exists {
		return Anonymous()
	}
	id, ok := raw.(*Identity)
	if !ok {
		return Anonymous()
	}
	return Resolve(id)
}

// IsReadOnly reports whether an HTTP method is safe
func IsReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Guard computes the tenant scope for the request and attaches it to the request
// context. Any scope already on the incoming context is replaced, and the original
// request is put back when the chain unwinds, panics included.
func Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		original := c.Request
		defer func() {
			c.Request = original
		}()

		principal := ResolveFromGin(c)
		scope := ScopeFor(principal, IsReadOnly(original.Method))

		ctx := WithPrincipal(WithScope(original.Context(), scope), principal)
		c.Request = original.WithContext(ctx)
		c.Set(PrincipalKey, principal)
		c.Set(ScopeKey, scope)

		c.Next()
	}
}

// GetPrincipal returns the principal the Guard resolved for this request
func GetPrincipal(c *gin.Context) Principal {
	raw, exists := c.Get(PrincipalKey)
	if !exists {
		return Anonymous()
	}
	p, ok := raw.(Principal)
	if !ok {
		return Anonymous()
	}
	return p
}

// GetScope returns the scope the Guard computed for this request
func GetScope(c *gin.Context) Scope {
	raw, exists := c.Get(ScopeKey)
	if !exists {
		return DenyAll()
	}
	s, ok := raw.(Scope)
	if !ok {
		return DenyAll()
	}
	return s
}
