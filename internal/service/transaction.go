package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/auth"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/lifecycle"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// TransactionService records commission-bearing events. Creation requires
// CASHIER or higher; the acting user becomes the transaction's cashier.
type TransactionService struct {
	core
}

// Create registers a transaction against an active bank and concept. The
// commission is computed from the concept's rule once and persisted as a
// snapshot.
func (s *TransactionService) Create(ctx context.Context, bankID, conceptID string, amount decimal.Decimal) *async.Future[*domain.Transaction] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Transaction, error) {
		if bankID == "" {
			return nil, apperr.Validationf("bank_id", "bank id is required")
		}
		if conceptID == "" {
			return nil, apperr.Validationf("concept_id", "concept id is required")
		}
		if !amount.IsPositive() {
			return nil, apperr.Validationf("amount", "amount must be positive, got %s", amount)
		}
		actor, err := auth.Require(ctx, domain.RoleCashier)
		if err != nil {
			return nil, err
		}
		bank, err := s.store.GetBank(ctx, bankID)
		if err != nil {
			return nil, err
		}
		if !bank.Active {
			return nil, apperr.Validationf("bank_id", "bank %q is inactive", bank.Name)
		}
		concept, err := s.store.GetConcept(ctx, conceptID)
		if err != nil {
			return nil, err
		}
		if !concept.Active {
			return nil, apperr.Validationf("concept_id", "concept %q is inactive", concept.Name)
		}
		tr := &domain.Transaction{
			ID:         uuid.NewString(),
			BankID:     bank.ID,
			ConceptID:  concept.ID,
			CashierID:  actor.ID,
			Amount:     amount,
			Commission: concept.Type.ComputeCommission(amount, concept.Value),
			Status:     lifecycle.InitialStatus(),
			CreatedAt:  time.Now().UTC(),
		}
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.InsertTransaction(ctx, tr); err != nil {
				return err
			}
			details := fmt.Sprintf("bank=%s concept=%s amount=%s commission=%s",
				bank.Name, concept.Name, tr.Amount, tr.Commission)
			return s.audit.Record(ctx, tx, "transaction.create", "Transaction", tr.ID, details)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("transaction created",
			"id", tr.ID, "amount", tr.Amount, "commission", tr.Commission, "cashier", actor.Username)
		return tr, nil
	})
}

// FindByID looks a transaction up by id.
func (s *TransactionService) FindByID(ctx context.Context, id string) *async.Future[*domain.Transaction] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Transaction, error) {
		return s.store.GetTransaction(ctx, id)
	})
}

// ListAll returns the most recent transactions.
func (s *TransactionService) ListAll(ctx context.Context, limit int) *async.Future[[]domain.Transaction] {
	return async.Run(s.pool, ctx, func(ctx context.Context) ([]domain.Transaction, error) {
		return s.store.ListTransactions(ctx, limit)
	})
}
