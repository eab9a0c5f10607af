package domain

import "time"

// ReversalStatus is the lifecycle state of a ReversalRequest.
type ReversalStatus string

const (
	ReversalPending  ReversalStatus = "PENDING"
	ReversalApproved ReversalStatus = "APPROVED"
	ReversalRejected ReversalStatus = "REJECTED"
)

// ReversalRequest asks a supervisor to undo a Transaction. Exactly one
// request may ever exist per transaction; the store enforces the 1:1
// invariant.
type ReversalRequest struct {
	ID            string         `db:"id" json:"id"`
	TransactionID string         `db:"transaction_id" json:"transaction_id"`
	RequesterID   string         `db:"requester_id" json:"requester_id"`
	Message       string         `db:"message" json:"message"`
	Status        ReversalStatus `db:"status" json:"status"`
	RequestedAt   time.Time      `db:"requested_at" json:"requested_at"`
	EvaluatorID   *string        `db:"evaluator_id" json:"evaluator_id,omitempty"`
	Answer        *string        `db:"answer" json:"answer,omitempty"`
	AnsweredAt    *time.Time     `db:"answered_at" json:"answered_at,omitempty"`
}
