package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// pgTx runs every mutation of one unit of work on a single pgx.Tx.
type pgTx struct {
	tx pgx.Tx
}

var _ storage.Tx = (*pgTx)(nil)

func (t *pgTx) InsertBank(ctx context.Context, b *domain.Bank) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO banks (id, name, active, created_at)
		 VALUES ($1::uuid, $2, $3, $4)`,
		b.ID, b.Name, b.Active, b.CreatedAt,
	)
	return mapError(err, "bank", b.ID)
}

func (t *pgTx) UpdateBank(ctx context.Context, b *domain.Bank) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE banks SET name = $2, active = $3 WHERE id = $1::uuid`,
		b.ID, b.Name, b.Active,
	)
	if err != nil {
		return mapError(err, "bank", b.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "bank", b.ID)
	}
	return nil
}

func (t *pgTx) InsertConcept(ctx context.Context, c *domain.Concept) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO concepts (id, name, type, value, active, created_at)
		 VALUES ($1::uuid, $2, $3, $4::numeric, $5, $6)`,
		c.ID, c.Name, c.Type, c.Value.String(), c.Active, c.CreatedAt,
	)
	return mapError(err, "concept", c.ID)
}

func (t *pgTx) UpdateConcept(ctx context.Context, c *domain.Concept) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE concepts SET name = $2, type = $3, value = $4::numeric, active = $5
		 WHERE id = $1::uuid`,
		c.ID, c.Name, c.Type, c.Value.String(), c.Active,
	)
	if err != nil {
		return mapError(err, "concept", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "concept", c.ID)
	}
	return nil
}

func (t *pgTx) InsertUser(ctx context.Context, u *domain.User) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO users (id, username, salt, password_hash, role, active, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.Salt, u.PasswordHash, u.Role, u.Active, u.CreatedAt,
	)
	return mapError(err, "user", u.ID)
}

func (t *pgTx) UpdateUser(ctx context.Context, u *domain.User) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE users SET salt = $2, password_hash = $3, role = $4, active = $5
		 WHERE id = $1::uuid`,
		u.ID, u.Salt, u.PasswordHash, u.Role, u.Active,
	)
	if err != nil {
		return mapError(err, "user", u.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "user", u.ID)
	}
	return nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, tr *domain.Transaction) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO transactions (id, bank_id, concept_id, cashier_id, amount, commission, status, created_at)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5::numeric, $6::numeric, $7, $8)`,
		tr.ID, tr.BankID, tr.ConceptID, tr.CashierID,
		tr.Amount.String(), tr.Commission.String(), tr.Status, tr.CreatedAt,
	)
	return mapError(err, "transaction", tr.ID)
}

func (t *pgTx) UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE transactions SET status = $2 WHERE id = $1::uuid`,
		id, status,
	)
	if err != nil {
		return mapError(err, "transaction", id)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "transaction", id)
	}
	return nil
}

func (t *pgTx) GetTransactionForUpdate(ctx context.Context, id string) (*domain.Transaction, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = $1::uuid FOR UPDATE`, id)
	tr, err := scanTransaction(row.Scan)
	if err != nil {
		return nil, mapError(err, "transaction", id)
	}
	return tr, nil
}

func (t *pgTx) InsertReversalRequest(ctx context.Context, r *domain.ReversalRequest) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO reversal_requests (id, transaction_id, requester_id, message, status, requested_at)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6)`,
		r.ID, r.TransactionID, r.RequesterID, r.Message, r.Status, r.RequestedAt,
	)
	return mapError(err, "reversal request", r.ID)
}

func (t *pgTx) UpdateReversalRequest(ctx context.Context, r *domain.ReversalRequest) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE reversal_requests
		 SET status = $2, evaluator_id = $3::uuid, answer = $4, answered_at = $5
		 WHERE id = $1::uuid`,
		r.ID, r.Status, r.EvaluatorID, r.Answer, r.AnsweredAt,
	)
	if err != nil {
		return mapError(err, "reversal request", r.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "reversal request", r.ID)
	}
	return nil
}

func (t *pgTx) GetReversalForUpdate(ctx context.Context, id string) (*domain.ReversalRequest, error) {
	var r domain.ReversalRequest
	err := t.tx.QueryRow(ctx,
		`SELECT `+reversalColumns+` FROM reversal_requests WHERE id = $1::uuid FOR UPDATE`,
		id,
	).Scan(&r.ID, &r.TransactionID, &r.RequesterID, &r.Message, &r.Status,
		&r.RequestedAt, &r.EvaluatorID, &r.Answer, &r.AnsweredAt)
	if err != nil {
		return nil, mapError(err, "reversal request", id)
	}
	return &r, nil
}

func (t *pgTx) UpsertGlobalConfig(ctx context.Context, c *domain.GlobalConfig) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO global_config (id, org_name, org_tax_id, org_address, org_slogan, updated_by, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6::uuid, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET org_name = EXCLUDED.org_name,
		     org_tax_id = EXCLUDED.org_tax_id,
		     org_address = EXCLUDED.org_address,
		     org_slogan = EXCLUDED.org_slogan,
		     updated_by = EXCLUDED.updated_by,
		     updated_at = EXCLUDED.updated_at`,
		c.ID, c.OrgName, c.OrgTaxID, c.OrgAddress, c.OrgSlogan, c.UpdatedBy, c.UpdatedAt,
	)
	return mapError(err, "global config", "1")
}

func (t *pgTx) InsertAuditLog(ctx context.Context, e *domain.AuditLog) error {
	var actor any
	if e.ActorID != "" {
		actor = e.ActorID
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, details, host, created_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8)`,
		e.ID, actor, e.Action, e.EntityType, e.EntityID, e.Details, e.Host, e.CreatedAt,
	)
	return mapError(err, "audit log", e.ID)
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback is safe to defer after Commit; pgx reports ErrTxClosed, which
// is swallowed here.
func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == nil || errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
