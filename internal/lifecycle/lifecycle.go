// Package lifecycle owns every legal transition of the paired
// Transaction and ReversalRequest statuses. Services never assign either
// status directly; anything other than the four named transitions is
// rejected by construction.
package lifecycle

import (
	"time"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
)

// InitialStatus is the status of every newly created transaction.
func InitialStatus() domain.TransactionStatus {
	return domain.TransactionRegistered
}

// RequestReversal moves a REGISTERED transaction to REVERSION_REQUESTED
// and marks req PENDING. Any other starting status is illegal.
func RequestReversal(tr *domain.Transaction, req *domain.ReversalRequest) error {
	if tr.Status != domain.TransactionRegistered {
		return apperr.Validationf("status",
			"reversal can only be requested on a REGISTERED transaction, %s is %s", tr.ID, tr.Status)
	}
	tr.Status = domain.TransactionReversionRequested
	req.Status = domain.ReversalPending
	return nil
}

// Approve resolves a PENDING request: the request becomes APPROVED and
// the transaction terminally REVERSED.
func Approve(req *domain.ReversalRequest, tr *domain.Transaction, evaluatorID, answer string) error {
	if err := resolve(req, tr, evaluatorID, answer); err != nil {
		return err
	}
	req.Status = domain.ReversalApproved
	tr.Status = domain.TransactionReversed
	return nil
}

// Reject resolves a PENDING request: the request becomes REJECTED and the
// transaction returns to REGISTERED. The store's one-request-per-
// transaction invariant still blocks a second reversal attempt.
func Reject(req *domain.ReversalRequest, tr *domain.Transaction, evaluatorID, answer string) error {
	if err := resolve(req, tr, evaluatorID, answer); err != nil {
		return err
	}
	req.Status = domain.ReversalRejected
	tr.Status = domain.TransactionRegistered
	return nil
}

func resolve(req *domain.ReversalRequest, tr *domain.Transaction, evaluatorID, answer string) error {
	if req.Status != domain.ReversalPending {
		return apperr.Validationf("status",
			"reversal request %s is already resolved (%s)", req.ID, req.Status)
	}
	if tr.Status != domain.TransactionReversionRequested {
		return apperr.Validationf("status",
			"transaction %s is not awaiting reversal, it is %s", tr.ID, tr.Status)
	}
	if req.TransactionID != tr.ID {
		return apperr.Validationf("transaction_id",
			"reversal request %s does not belong to transaction %s", req.ID, tr.ID)
	}
	now := time.Now().UTC()
	req.EvaluatorID = &evaluatorID
	req.Answer = &answer
	req.AnsweredAt = &now
	return nil
}
