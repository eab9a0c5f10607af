package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

func TestUserCreateAndValidate(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	ctx := asActor(admin)

	created, err := svcs.Users.Create(ctx, "maria", "s3cret-pass", domain.RoleCashier).Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, created.Role)
	assert.True(t, created.Active)

	got, err := svcs.Users.Validate(context.Background(), "maria", "s3cret-pass").Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svcs.Users.Validate(context.Background(), "maria", "wrong-pass").Wait(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestUserValidateInactive(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	seedUser(t, store, "maria", domain.RoleCashier)
	ctx := asActor(admin)

	_, err := svcs.Users.SetActive(ctx, "maria", false).Wait(ctx)
	require.NoError(t, err)

	_, err = svcs.Users.Validate(context.Background(), "maria", testPassword).Wait(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	ctx := asActor(admin)

	_, err := svcs.Users.Create(ctx, "maria", "s3cret-pass", domain.RoleCashier).Wait(ctx)
	require.NoError(t, err)

	_, err = svcs.Users.Create(ctx, "maria", "other-pass", domain.RoleCashier).Wait(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err, storage.ConstraintUserUsername))
}

func TestUserCreateRejectsShortPassword(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	ctx := asActor(admin)

	_, err := svcs.Users.Create(ctx, "maria", "short", domain.RoleCashier).Wait(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestUserCreateDeniedForCashier(t *testing.T) {
	svcs, store := newEnv(t)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	ctx := asActor(cashier)

	_, err := svcs.Users.Create(ctx, "maria", "s3cret-pass", domain.RoleCashier).Wait(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
}

func TestUserChangePassword(t *testing.T) {
	svcs, store := newEnv(t)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	ctx := asActor(cashier)

	_, err := svcs.Users.ChangePassword(ctx, testPassword, "brand-new-pass").Wait(ctx)
	require.NoError(t, err)

	_, err = svcs.Users.Validate(context.Background(), "cashier", "brand-new-pass").Wait(context.Background())
	require.NoError(t, err)

	_, err = svcs.Users.Validate(context.Background(), "cashier", testPassword).Wait(context.Background())
	require.Error(t, err)
}

func TestUserChangePasswordWrongCurrent(t *testing.T) {
	svcs, store := newEnv(t)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	ctx := asActor(cashier)

	_, err := svcs.Users.ChangePassword(ctx, "not-the-password", "brand-new-pass").Wait(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
}

func TestUserResetPassword(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	seedUser(t, store, "maria", domain.RoleCashier)
	ctx := asActor(admin)

	_, err := svcs.Users.ResetPassword(ctx, "maria", "reset-pass-1").Wait(ctx)
	require.NoError(t, err)

	got, err := svcs.Users.Validate(context.Background(), "maria", "reset-pass-1").Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "maria", got.Username)
}

func TestUserSetActiveAudited(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	maria := seedUser(t, store, "maria", domain.RoleCashier)
	ctx := asActor(admin)

	_, err := svcs.Users.SetActive(ctx, "maria", false).Wait(ctx)
	require.NoError(t, err)

	entries := auditEntriesFor(t, store, maria.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "user.deactivate", entries[0].Action)
}

func TestEnsureRootBootstrap(t *testing.T) {
	svcs, store := newEnv(t)
	ctx := context.Background()

	require.NoError(t, svcs.Users.EnsureRoot(ctx, "root", "root-password"))

	root, err := store.GetUserByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRoot, root.Role)

	entries := auditEntriesFor(t, store, root.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "user.bootstrap", entries[0].Action)
	assert.Equal(t, root.ID, entries[0].ActorID)

	// Second call is a no-op once a root exists.
	require.NoError(t, svcs.Users.EnsureRoot(ctx, "root", "root-password"))
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
