package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a Transaction. Only the
// lifecycle package moves a transaction between states.
type TransactionStatus string

const (
	TransactionRegistered         TransactionStatus = "REGISTERED"
	TransactionReversionRequested TransactionStatus = "REVERSION_REQUESTED"
	TransactionReversed           TransactionStatus = "REVERSED"
)

// Transaction is one commission-bearing event recorded by a cashier.
// Commission is a snapshot computed from the Concept rule at creation
// time and never recomputed.
type Transaction struct {
	ID         string            `db:"id" json:"id"`
	BankID     string            `db:"bank_id" json:"bank_id"`
	ConceptID  string            `db:"concept_id" json:"concept_id"`
	CashierID  string            `db:"cashier_id" json:"cashier_id"`
	Amount     decimal.Decimal   `db:"amount" json:"amount"`
	Commission decimal.Decimal   `db:"commission" json:"commission"`
	Status     TransactionStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}
