// Package storage defines the persistence boundary of the service layer.
// Mutations happen inside a Tx so a business change and its audit entry
// commit or roll back as one unit.
package storage

import (
	"context"

	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
)

// Named constraints shared by every Store implementation. The Postgres
// schema declares them; the memory store enforces the same names so both
// surface identical StorageConstraintError values.
const (
	ConstraintBankName          = "uq_bank_name"
	ConstraintBankNameNotEmpty  = "ck_bank_name_not_empty"
	ConstraintConceptName       = "uq_concept_name"
	ConstraintConceptNameEmpty  = "ck_concept_name_not_empty"
	ConstraintConceptValue      = "ck_concept_value"
	ConstraintUserUsername      = "uq_user_username"
	ConstraintAuditActor        = "nn_audit_actor"
	ConstraintReversalPerTx     = "uq_reversal_transaction"
	ConstraintGlobalConfigRow   = "uq_globalconfig_row"
	ConstraintGlobalConfigOwner = "uq_globalconfig_owner"
)

// Store exposes reads and opens transactions. Reads observe committed
// state only.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	GetBank(ctx context.Context, id string) (*domain.Bank, error)
	GetBankByName(ctx context.Context, name string) (*domain.Bank, error)
	ListBanks(ctx context.Context, onlyActive bool) ([]domain.Bank, error)

	GetConcept(ctx context.Context, id string) (*domain.Concept, error)
	GetConceptByName(ctx context.Context, name string) (*domain.Concept, error)
	ListConcepts(ctx context.Context, onlyActive bool) ([]domain.Concept, error)

	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)

	GetReversalRequest(ctx context.Context, id string) (*domain.ReversalRequest, error)
	ListReversalRequests(ctx context.Context, status *domain.ReversalStatus, limit int) ([]domain.ReversalRequest, error)

	GetGlobalConfig(ctx context.Context) (*domain.GlobalConfig, error)
	ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error)

	Close()
}

// Tx is one atomic unit of work. Implementations map constraint
// violations to apperr.StorageConstraintError with the constraint names
// above, and missing rows to apperr.NotFoundError.
type Tx interface {
	InsertBank(ctx context.Context, b *domain.Bank) error
	UpdateBank(ctx context.Context, b *domain.Bank) error

	InsertConcept(ctx context.Context, c *domain.Concept) error
	UpdateConcept(ctx context.Context, c *domain.Concept) error

	InsertUser(ctx context.Context, u *domain.User) error
	UpdateUser(ctx context.Context, u *domain.User) error

	InsertTransaction(ctx context.Context, t *domain.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus) error
	// GetTransactionForUpdate locks the row for the duration of the Tx so
	// concurrent lifecycle transitions serialize on the store.
	GetTransactionForUpdate(ctx context.Context, id string) (*domain.Transaction, error)

	InsertReversalRequest(ctx context.Context, r *domain.ReversalRequest) error
	UpdateReversalRequest(ctx context.Context, r *domain.ReversalRequest) error
	GetReversalForUpdate(ctx context.Context, id string) (*domain.ReversalRequest, error)

	UpsertGlobalConfig(ctx context.Context, c *domain.GlobalConfig) error

	InsertAuditLog(ctx context.Context, e *domain.AuditLog) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
