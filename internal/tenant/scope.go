package tenant

import (
	"context"
	"fmt"

	"marketplace-backend/internal/database/models"

	"github.com/google/uuid"
)

// Mode is the isolation mode applied to one request
type Mode int

// The zero Mode is DenyAll so that an unset scope never grants access.
const (
	ModeDenyAll Mode = iota
	ModeScoped
	ModeUnrestricted
)

func (m Mode) String() string {
	switch m {
	case ModeScoped:
		return "SCOPED"
	case ModeUnrestricted:
		return "UNRESTRICTED"
	default:
		return "DENY_ALL"
	}
}

// ReservedOrganizationID is the id DenyAll scopes to. No organization ever has it.
var ReservedOrganizationID = uuid.Nil

// Scope is the active isolation mode plus the organization it is bound to
type Scope struct {
	mode  Mode
	orgID uuid.UUID
}

// Unrestricted sees every row
func Unrestricted() Scope {
	return Scope{mode: ModeUnrestricted}
}

// ScopedTo restricts access to rows of orgID
func ScopedTo(orgID uuid.UUID) Scope {
	if orgID == uuid.Nil {
		return DenyAll()
	}
	return Scope{mode: ModeScoped, orgID: orgID}
}

// DenyAll matches no tenant-owned row
func DenyAll() Scope {
	return Scope{mode: ModeDenyAll, orgID: ReservedOrganizationID}
}

// Mode returns the isolation mode
func (s Scope) Mode() Mode {
	return s.mode
}

// OrganizationID is the organization rows are restricted to. Meaningless when Unrestricted.
func (s Scope) OrganizationID() uuid.UUID {
	if s.mode == ModeScoped {
		return s.orgID
	}
	return ReservedOrganizationID
}

// Allows reports whether a row owned by orgID (nil = marketplace-wide) is visible
// for reading. shared marks models whose marketplace-wide rows are public.
func (s Scope) Allows(orgID *uuid.UUID, shared bool) bool {
	switch s.mode {
	case ModeUnrestricted:
		return true
	case ModeScoped:
		if orgID == nil {
			return shared
		}
		return *orgID == s.orgID
	default:
		return false
	}
}

func (s Scope) String() string {
	if s.mode == ModeScoped {
		return fmt.Sprintf("%s(%s)", s.mode, s.orgID)
	}
	return s.mode.String()
}

// ScopeFor computes the isolation mode for a principal. readOnly is true for
// requests that cannot mutate state.
func ScopeFor(p Principal, readOnly bool) Scope {
	if p.IsAnonymous() {
		if readOnly {
			return Unrestricted()
		}
		return DenyAll()
	}

	switch p.Role {
	case models.RoleAdmin:
		return Unrestricted()
	case models.RoleManager, models.RoleMember:
		if !p.HasOrganization() {
			return DenyAll()
		}
		return ScopedTo(*p.OrganizationID)
	default:
		return DenyAll()
	}
}

type scopeKey struct{}
type principalKey struct{}

// WithScope returns a copy of ctx carrying s, replacing any scope already present
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope carried by ctx, or DenyAll when there is none
func FromContext(ctx context.Context) Scope {
	if ctx == nil {
		return DenyAll()
	}
	if s, ok := ctx.Value(scopeKey{}).(Scope); ok {
		return s
	}
	return DenyAll()
}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal carried by ctx, or Anonymous
func PrincipalFromContext(ctx context.Context) Principal {
	if ctx == nil {
		return Anonymous()
	}
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}

// System returns ctx with an unrestricted scope, for bootstrap and background work
// that does not act on behalf of a caller.
func System(ctx context.Context) context.Context {
	return WithScope(ctx, Unrestricted())
}
