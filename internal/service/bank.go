package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/auth"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// BankService manages payee institutions. Mutations require ADMIN.
type BankService struct {
	core
}

// Create registers a new active bank.
func (s *BankService) Create(ctx context.Context, name string) *async.Future[*domain.Bank] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Bank, error) {
		name := strings.TrimSpace(name)
		if name == "" {
			return nil, apperr.Validationf("name", "bank name must not be empty")
		}
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		b := &domain.Bank{
			ID:        uuid.NewString(),
			Name:      name,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		}
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.InsertBank(ctx, b); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, "bank.create", "Bank", b.ID, "name="+b.Name)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("bank created", "id", b.ID, "name", b.Name, "actor", actor.Username)
		return b, nil
	})
}

// Update renames a bank or toggles its active flag.
func (s *BankService) Update(ctx context.Context, id, name string, active bool) *async.Future[*domain.Bank] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Bank, error) {
		name := strings.TrimSpace(name)
		if name == "" {
			return nil, apperr.Validationf("name", "bank name must not be empty")
		}
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		b, err := s.store.GetBank(ctx, id)
		if err != nil {
			return nil, err
		}
		b.Name = name
		b.Active = active
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.UpdateBank(ctx, b); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, "bank.update", "Bank", b.ID, "name="+b.Name)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("bank updated", "id", b.ID, "actor", actor.Username)
		return b, nil
	})
}

// ListAll returns every bank, inactive ones included.
func (s *BankService) ListAll(ctx context.Context) *async.Future[[]domain.Bank] {
	return async.Run(s.pool, ctx, func(ctx context.Context) ([]domain.Bank, error) {
		return s.store.ListBanks(ctx, false)
	})
}

// ListAllActive returns the banks available for new transactions.
func (s *BankService) ListAllActive(ctx context.Context) *async.Future[[]domain.Bank] {
	return async.Run(s.pool, ctx, func(ctx context.Context) ([]domain.Bank, error) {
		return s.store.ListBanks(ctx, true)
	})
}

// FindByID looks a bank up by id.
func (s *BankService) FindByID(ctx context.Context, id string) *async.Future[*domain.Bank] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Bank, error) {
		return s.store.GetBank(ctx, id)
	})
}

// FindByName looks a bank up by its exact name.
func (s *BankService) FindByName(ctx context.Context, name string) *async.Future[*domain.Bank] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Bank, error) {
		return s.store.GetBankByName(ctx, strings.TrimSpace(name))
	})
}
