// Package service exposes the authorization-gated operations of the
// system. Every mutating operation follows one template: validate,
// authorize, open a transaction, mutate, record an audit entry, commit.
// All operations run on a bounded worker pool and return a Future.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/audit"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// core carries the collaborators every service shares.
type core struct {
	store storage.Store
	audit *audit.Recorder
	pool  *async.Pool
	log   *zap.SugaredLogger
}

// inTx runs fn inside one unit of work. Any error rolls everything back,
// including audit entries staged by fn.
func (c core) inTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Services bundles every entity service over one store and pool.
type Services struct {
	Banks        *BankService
	Concepts     *ConceptService
	Users        *UserService
	Transactions *TransactionService
	Reversals    *ReversalService
	Config       *ConfigService
}

// New wires the services.
func New(store storage.Store, rec *audit.Recorder, pool *async.Pool, log *zap.SugaredLogger) *Services {
	c := core{store: store, audit: rec, pool: pool, log: log}
	return &Services{
		Banks:        &BankService{core: c},
		Concepts:     &ConceptService{core: c},
		Users:        &UserService{core: c},
		Transactions: &TransactionService{core: c},
		Reversals:    &ReversalService{core: c},
		Config:       &ConfigService{core: c},
	}
}
