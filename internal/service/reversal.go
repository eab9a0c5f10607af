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
	"github.com/infoyupay/gang-comisiones-backend/internal/lifecycle"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// ReversalService drives the reversal workflow: a cashier requests the
// undo of a transaction, a supervisor approves or rejects it. Both sides
// of each transition commit atomically with their audit entry.
type ReversalService struct {
	core
}

// Request opens a PENDING reversal against a REGISTERED transaction and
// moves the transaction to REVERSION_REQUESTED. At most one request may
// ever exist per transaction.
func (s *ReversalService) Request(ctx context.Context, transactionID, message string) *async.Future[*domain.ReversalRequest] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.ReversalRequest, error) {
		if transactionID == "" {
			return nil, apperr.Validationf("transaction_id", "transaction id is required")
		}
		if strings.TrimSpace(message) == "" {
			return nil, apperr.Validationf("message", "a justification message is required")
		}
		actor, err := auth.Require(ctx, domain.RoleCashier)
		if err != nil {
			return nil, err
		}
		req := &domain.ReversalRequest{
			ID:            uuid.NewString(),
			TransactionID: transactionID,
			RequesterID:   actor.ID,
			Message:       strings.TrimSpace(message),
			RequestedAt:   time.Now().UTC(),
		}
		err = s.inTx(ctx, func(tx storage.Tx) error {
			tr, err := tx.GetTransactionForUpdate(ctx, transactionID)
			if err != nil {
				return err
			}
			if err := lifecycle.RequestReversal(tr, req); err != nil {
				return err
			}
			if err := tx.InsertReversalRequest(ctx, req); err != nil {
				return err
			}
			if err := tx.UpdateTransactionStatus(ctx, tr.ID, tr.Status); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, "reversal.request", "ReversalRequest", req.ID,
				"transaction="+tr.ID)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("reversal requested", "id", req.ID, "transaction", transactionID, "actor", actor.Username)
		return req, nil
	})
}

// Resolve approves or rejects a PENDING request. Approval reverses the
// transaction terminally; rejection returns it to REGISTERED.
func (s *ReversalService) Resolve(ctx context.Context, requestID, answer string, approve bool) *async.Future[*domain.ReversalRequest] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.ReversalRequest, error) {
		if requestID == "" {
			return nil, apperr.Validationf("request_id", "request id is required")
		}
		if strings.TrimSpace(answer) == "" {
			return nil, apperr.Validationf("answer", "an answer is required")
		}
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		var req *domain.ReversalRequest
		err = s.inTx(ctx, func(tx storage.Tx) error {
			var err error
			req, err = tx.GetReversalForUpdate(ctx, requestID)
			if err != nil {
				return err
			}
			tr, err := tx.GetTransactionForUpdate(ctx, req.TransactionID)
			if err != nil {
				return err
			}
			action := "reversal.reject"
			if approve {
				action = "reversal.approve"
				err = lifecycle.Approve(req, tr, actor.ID, strings.TrimSpace(answer))
			} else {
				err = lifecycle.Reject(req, tr, actor.ID, strings.TrimSpace(answer))
			}
			if err != nil {
				return err
			}
			if err := tx.UpdateReversalRequest(ctx, req); err != nil {
				return err
			}
			if err := tx.UpdateTransactionStatus(ctx, tr.ID, tr.Status); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, action, "ReversalRequest", req.ID,
				"transaction="+tr.ID)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("reversal resolved",
			"id", req.ID, "status", req.Status, "actor", actor.Username)
		return req, nil
	})
}

// FindByID looks a reversal request up by id.
func (s *ReversalService) FindByID(ctx context.Context, id string) *async.Future[*domain.ReversalRequest] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.ReversalRequest, error) {
		return s.store.GetReversalRequest(ctx, id)
	})
}

// ListPending returns the requests awaiting resolution.
func (s *ReversalService) ListPending(ctx context.Context, limit int) *async.Future[[]domain.ReversalRequest] {
	return async.Run(s.pool, ctx, func(ctx context.Context) ([]domain.ReversalRequest, error) {
		pending := domain.ReversalPending
		return s.store.ListReversalRequests(ctx, &pending, limit)
	})
}
