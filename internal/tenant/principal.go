// Package tenant resolves who is calling and which organizations' rows the call may touch.
package tenant

import (
	"strings"

	"marketplace-backend/internal/database/models"

	"github.com/google/uuid"
)

// Identity is what an authenticated session asserts about its caller.
// Fields are kept as raw strings so that Resolve can reject malformed values.
type Identity struct {
	UserID         string
	Username       string
	Role           string
	OrganizationID string
}

// Principal is the resolved caller. The zero value is the anonymous principal.
type Principal struct {
	UserID         uuid.UUID
	Username       string
	Role           models.Role
	OrganizationID *uuid.UUID
}

// Anonymous returns the principal used for unauthenticated or unreadable sessions
func Anonymous() Principal {
	return Principal{}
}

// IsAnonymous reports whether p carries no authenticated identity
func (p Principal) IsAnonymous() bool {
	return p.Role == "" || p.UserID == uuid.Nil
}

// HasOrganization reports whether p belongs to a real organization
func (p Principal) HasOrganization() bool {
	return p.OrganizationID != nil && *p.OrganizationID != uuid.Nil
}

// Resolve turns a session identity into a Principal. Any missing or malformed
// field yields Anonymous.
func Resolve(id *Identity) Principal {
	if id == nil {
		return Anonymous()
	}

	userID, err := uuid.Parse(strings.TrimSpace(id.UserID))
	if err != nil || userID == uuid.Nil {
		return Anonymous()
	}

	role, ok := models.ParseRole(id.Role)
	if !ok {
		return Anonymous()
	}

	p := Principal{
		UserID:   userID,
		Username: id.Username,
		Role:     role,
	}

	if raw := strings.TrimSpace(id.OrganizationID); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			return Anonymous()
		}
		if orgID != uuid.Nil {
			p.OrganizationID = &orgID
		}
	}

	return p
}
