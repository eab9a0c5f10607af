package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
)

func TestTransactionCreateRateCommission(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	bank, concept := seedBankAndConcept(t, svcs, admin, domain.ConceptRate, "0.05")
	ctx := asActor(cashier)

	tr, err := svcs.Transactions.Create(ctx, bank.ID, concept.ID, dec("100")).Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionRegistered, tr.Status)
	assert.Equal(t, cashier.ID, tr.CashierID)
	assert.True(t, tr.Commission.Equal(dec("5.00")), "commission %s", tr.Commission)

	entries := auditEntriesFor(t, store, tr.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "transaction.create", entries[0].Action)
	assert.Equal(t, cashier.ID, entries[0].ActorID)
}

func TestTransactionCreateFixedCommissionIgnoresAmount(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	bank, concept := seedBankAndConcept(t, svcs, admin, domain.ConceptFixed, "7.50")
	ctx := asActor(cashier)

	tr, err := svcs.Transactions.Create(ctx, bank.ID, concept.ID, dec("99999.99")).Wait(ctx)
	require.NoError(t, err)
	assert.True(t, tr.Commission.Equal(dec("7.50")), "commission %s", tr.Commission)
}

func TestTransactionCommissionSnapshotSurvivesConceptUpdate(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	bank, concept := seedBankAndConcept(t, svcs, admin, domain.ConceptRate, "0.05")

	cctx := asActor(cashier)
	tr, err := svcs.Transactions.Create(cctx, bank.ID, concept.ID, dec("200")).Wait(cctx)
	require.NoError(t, err)
	require.True(t, tr.Commission.Equal(dec("10.00")))

	actx := asActor(admin)
	_, err = svcs.Concepts.Update(actx, concept.ID, concept.Name, concept.Type, dec("0.10"), true).Wait(actx)
	require.NoError(t, err)

	got, err := svcs.Transactions.FindByID(cctx, tr.ID).Wait(cctx)
	require.NoError(t, err)
	assert.True(t, got.Commission.Equal(dec("10.00")), "snapshot changed to %s", got.Commission)
}

func TestTransactionCreateInactiveBank(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	bank, concept := seedBankAndConcept(t, svcs, admin, domain.ConceptRate, "0.05")

	actx := asActor(admin)
	_, err := svcs.Banks.Update(actx, bank.ID, bank.Name, false).Wait(actx)
	require.NoError(t, err)

	cctx := asActor(cashier)
	_, err = svcs.Transactions.Create(cctx, bank.ID, concept.ID, dec("100")).Wait(cctx)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestTransactionCreateInactiveConcept(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	bank, concept := seedBankAndConcept(t, svcs, admin, domain.ConceptRate, "0.05")

	actx := asActor(admin)
	_, err := svcs.Concepts.Update(actx, concept.ID, concept.Name, concept.Type, concept.Value, false).Wait(actx)
	require.NoError(t, err)

	cctx := asActor(cashier)
	_, err = svcs.Transactions.Create(cctx, bank.ID, concept.ID, dec("100")).Wait(cctx)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestTransactionCreateNonPositiveAmount(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	bank, concept := seedBankAndConcept(t, svcs, admin, domain.ConceptRate, "0.05")
	ctx := asActor(cashier)

	for _, amount := range []string{"0", "-1"} {
		_, err := svcs.Transactions.Create(ctx, bank.ID, concept.ID, dec(amount)).Wait(ctx)
		require.Error(t, err, "amount %s", amount)
		assert.True(t, apperr.IsValidation(err))
	}
}

func TestTransactionCreateUnknownBank(t *testing.T) {
	svcs, store := newEnv(t)
	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	cashier := seedUser(t, store, "cashier", domain.RoleCashier)
	_, concept := seedBankAndConcept(t, svcs, admin, domain.ConceptRate, "0.05")
	ctx := asActor(cashier)

	_, err := svcs.Transactions.Create(ctx, "no-such-bank", concept.ID, dec("100")).Wait(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
