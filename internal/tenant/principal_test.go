package tenant

import (
	"testing"

	"marketplace-backend/internal/database/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()

	t.Run("nil identity is anonymous", func(t *testing.T) {
		assert.True(t, Resolve(nil).IsAnonymous())
	})

	t.Run("member with organization", func(t *testing.T) {
		p := Resolve(&Identity{UserID: userID.String(), Username: "ana", Role: "MEMBER", OrganizationID: orgID.String()})
		require.False(t, p.IsAnonymous())
		assert.Equal(t, models.RoleMember, p.Role)
		require.NotNil(t, p.OrganizationID)
		assert.Equal(t, orgID, *p.OrganizationID)
	})

	t.Run("legacy role prefix is accepted", func(t *testing.T) {
		p := Resolve(&Identity{UserID: userID.String(), Role: "ROLE_ADMIN"})
		assert.Equal(t, models.RoleAdmin, p.Role)
		assert.Nil(t, p.OrganizationID)
	})

	t.Run("nil organization id is treated as absent", func(t *testing.T) {
		p := Resolve(&Identity{UserID: userID.String(), Role: "MANAGER", OrganizationID: uuid.Nil.String()})
		assert.False(t, p.HasOrganization())
	})

	malformed := map[string]*Identity{
		"missing user id":      {Role: "MEMBER"},
		"bad user id":          {UserID: "42", Role: "MEMBER"},
		"unknown role":         {UserID: userID.String(), Role: "GERENTE"},
		"bad organization id":  {UserID: userID.String(), Role: "MEMBER", OrganizationID: "acme"},
		"empty role":           {UserID: userID.String()},
		"nil uuid as the user": {UserID: uuid.Nil.String(), Role: "ADMIN"},
	}
	for name, id := range malformed {
		t.Run(name, func(t *testing.T) {
			assert.True(t, Resolve(id).IsAnonymous())
		})
	}
}
