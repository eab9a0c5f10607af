package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/audit"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/service"
	"github.com/infoyupay/gang-comisiones-backend/internal/session"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage/memory"
	"github.com/infoyupay/gang-comisiones-backend/internal/vault"
)

const testPassword = "password123"

func newEnv(t *testing.T) (*service.Services, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svcs := service.New(store, audit.NewRecorder(), async.NewPool(4), zap.NewNop().Sugar())
	return svcs, store
}

// seedUser writes a user straight into the store, bypassing the service
// layer, so tests can mint actors of any role.
func seedUser(t *testing.T, store *memory.Store, username string, role domain.Role) *domain.User {
	t.Helper()
	ctx := context.Background()
	salt, err := vault.GenerateSalt()
	require.NoError(t, err)
	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Salt:         salt,
		PasswordHash: vault.HashPassword(testPassword, salt),
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertUser(ctx, u))
	require.NoError(t, tx.Commit(ctx))
	return u
}

func asActor(u *domain.User) context.Context {
	return session.WithActor(context.Background(), u)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedBankAndConcept registers an active bank and concept as admin.
func seedBankAndConcept(t *testing.T, svcs *service.Services, admin *domain.User, typ domain.ConceptType, value string) (*domain.Bank, *domain.Concept) {
	t.Helper()
	ctx := asActor(admin)
	bank, err := svcs.Banks.Create(ctx, "Banco de la Nacion").Wait(ctx)
	require.NoError(t, err)
	concept, err := svcs.Concepts.Create(ctx, "commission concept", typ, dec(value)).Wait(ctx)
	require.NoError(t, err)
	return bank, concept
}

// auditEntriesFor returns the audit rows tagged with the given entity id.
func auditEntriesFor(t *testing.T, store *memory.Store, entityID string) []domain.AuditLog {
	t.Helper()
	logs, err := store.ListAuditLogs(context.Background(), 0)
	require.NoError(t, err)
	var out []domain.AuditLog
	for _, e := range logs {
		if e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out
}
