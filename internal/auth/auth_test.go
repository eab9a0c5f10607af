package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/auth"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/session"
)

func actorCtx(role domain.Role, active bool) context.Context {
	return session.WithActor(context.Background(), &domain.User{
		ID:       "u1",
		Username: "someone",
		Role:     role,
		Active:   active,
	})
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		min     domain.Role
		wantErr bool
	}{
		{name: "root passes admin gate", ctx: actorCtx(domain.RoleRoot, true), min: domain.RoleAdmin, wantErr: false},
		{name: "admin passes admin gate", ctx: actorCtx(domain.RoleAdmin, true), min: domain.RoleAdmin, wantErr: false},
		{name: "cashier fails admin gate", ctx: actorCtx(domain.RoleCashier, true), min: domain.RoleAdmin, wantErr: true},
		{name: "cashier passes cashier gate", ctx: actorCtx(domain.RoleCashier, true), min: domain.RoleCashier, wantErr: false},
		{name: "inactive admin denied", ctx: actorCtx(domain.RoleAdmin, false), min: domain.RoleCashier, wantErr: true},
		{name: "unknown role denied", ctx: actorCtx(domain.Role("???"), true), min: domain.RoleCashier, wantErr: true},
		{name: "no actor denied", ctx: context.Background(), min: domain.RoleCashier, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := auth.Require(tt.ctx, tt.min)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsAuthorization(err), "expected AuthorizationError, got %T", err)
				assert.Contains(t, err.Error(), "insufficient privileges")
				assert.Nil(t, u)
			} else {
				require.NoError(t, err)
				require.NotNil(t, u)
			}
		})
	}
}

func TestRequireActor(t *testing.T) {
	_, err := auth.RequireActor(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))

	u, err := auth.RequireActor(actorCtx(domain.RoleCashier, true))
	require.NoError(t, err)
	assert.Equal(t, "someone", u.Username)
}
