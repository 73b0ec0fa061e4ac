package logger

import (
	"context"
	"testing"

	"marketplace-backend/internal/database/models"
	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithContextAnonymous(t *testing.T) {
	l := WithContext(context.Background())

	assert.Equal(t, "anonymous", l.Data["user"])
	assert.Equal(t, "DENY_ALL", l.Data["scope"])
	assert.NotContains(t, l.Data, "organization_id")
}

func TestWithContextScopedPrincipal(t *testing.T) {
	orgID := uuid.New()
	p := tenant.Principal{UserID: uuid.New(), Username: "maria", Role: models.RoleManager, OrganizationID: &orgID}
	ctx := tenant.WithPrincipal(tenant.WithScope(context.Background(), tenant.ScopedTo(orgID)), p)

	l := WithContext(ctx).WithField("component", "search")

	assert.Equal(t, "maria", l.Data["user"])
	assert.Equal(t, p.UserID.String(), l.Data["user_id"])
	assert.Equal(t, "SCOPED", l.Data["scope"])
	assert.Equal(t, orgID.String(), l.Data["organization_id"])
	assert.Equal(t, "search", l.Data["component"])
}

func TestWithContextRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")

	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
	assert.Equal(t, "req-42", WithContext(ctx).Data["request_id"])
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.NotContains(t, WithContext(context.Background()).Data, "request_id")
}
