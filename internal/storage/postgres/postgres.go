// Package postgres is the pgx-backed Store. All mutations run inside a
// pgx transaction; the schema's named constraints (see
// migrations/migrations.sql) back the service-layer validations.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// Open connects a pool and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Begin opens a database transaction.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

func (s *Store) GetBank(ctx context.Context, id string) (*domain.Bank, error) {
	var b domain.Bank
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, name, active, created_at FROM banks WHERE id = $1::uuid`,
		id,
	).Scan(&b.ID, &b.Name, &b.Active, &b.CreatedAt)
	if err != nil {
		return nil, mapError(err, "bank", id)
	}
	return &b, nil
}

func (s *Store) GetBankByName(ctx context.Context, name string) (*domain.Bank, error) {
	var b domain.Bank
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, name, active, created_at FROM banks WHERE name = $1`,
		name,
	).Scan(&b.ID, &b.Name, &b.Active, &b.CreatedAt)
	if err != nil {
		return nil, mapError(err, "bank", name)
	}
	return &b, nil
}

func (s *Store) ListBanks(ctx context.Context, onlyActive bool) ([]domain.Bank, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, active, created_at
		 FROM banks
		 WHERE NOT $1::bool OR active
		 ORDER BY name`,
		onlyActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bank
	for rows.Next() {
		var b domain.Bank
		if err := rows.Scan(&b.ID, &b.Name, &b.Active, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetConcept(ctx context.Context, id string) (*domain.Concept, error) {
	var (
		c   domain.Concept
		val string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, name, type, value::text, active, created_at FROM concepts WHERE id = $1::uuid`,
		id,
	).Scan(&c.ID, &c.Name, &c.Type, &val, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "concept", id)
	}
	c.Value, err = decimal.NewFromString(val)
	if err != nil {
		return nil, fmt.Errorf("parsing concept value %q: %w", val, err)
	}
	return &c, nil
}

func (s *Store) GetConceptByName(ctx context.Context, name string) (*domain.Concept, error) {
	var (
		c   domain.Concept
		val string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, name, type, value::text, active, created_at FROM concepts WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &c.Type, &val, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "concept", name)
	}
	c.Value, err = decimal.NewFromString(val)
	if err != nil {
		return nil, fmt.Errorf("parsing concept value %q: %w", val, err)
	}
	return &c, nil
}

func (s *Store) ListConcepts(ctx context.Context, onlyActive bool) ([]domain.Concept, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, type, value::text, active, created_at
		 FROM concepts
		 WHERE NOT $1::bool OR active
		 ORDER BY name`,
		onlyActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Concept
	for rows.Next() {
		var (
			c   domain.Concept
			val string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &val, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		if c.Value, err = decimal.NewFromString(val); err != nil {
			return nil, fmt.Errorf("parsing concept value %q: %w", val, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const userColumns = `id::text, username, salt, password_hash, role, active, created_at`

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`,
		id,
	).Scan(&u.ID, &u.Username, &u.Salt, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err, "user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Salt, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err, "user", username)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Salt, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

const txColumns = `id::text, bank_id::text, concept_id::text, cashier_id::text,
	amount::text, commission::text, status, created_at`

func scanTransaction(scan func(dest ...any) error) (*domain.Transaction, error) {
	var (
		t                  domain.Transaction
		amount, commission string
	)
	if err := scan(&t.ID, &t.BankID, &t.ConceptID, &t.CashierID, &amount, &commission, &t.Status, &t.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	if t.Commission, err = decimal.NewFromString(commission); err != nil {
		return nil, fmt.Errorf("parsing commission %q: %w", commission, err)
	}
	return &t, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = $1::uuid`, id)
	t, err := scanTransaction(row.Scan)
	if err != nil {
		return nil, mapError(err, "transaction", id)
	}
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+txColumns+` FROM transactions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

const reversalColumns = `id::text, transaction_id::text, requester_id::text, message,
	status, requested_at, evaluator_id::text, answer, answered_at`

func (s *Store) GetReversalRequest(ctx context.Context, id string) (*domain.ReversalRequest, error) {
	var r domain.ReversalRequest
	err := s.pool.QueryRow(ctx,
		`SELECT `+reversalColumns+` FROM reversal_requests WHERE id = $1::uuid`,
		id,
	).Scan(&r.ID, &r.TransactionID, &r.RequesterID, &r.Message, &r.Status,
		&r.RequestedAt, &r.EvaluatorID, &r.Answer, &r.AnsweredAt)
	if err != nil {
		return nil, mapError(err, "reversal request", id)
	}
	return &r, nil
}

func (s *Store) ListReversalRequests(ctx context.Context, status *domain.ReversalStatus, limit int) ([]domain.ReversalRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+reversalColumns+`
		 FROM reversal_requests
		 WHERE $1::text IS NULL OR status = $1
		 ORDER BY requested_at DESC
		 LIMIT $2`,
		status, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ReversalRequest, 0, limit)
	for rows.Next() {
		var r domain.ReversalRequest
		if err := rows.Scan(&r.ID, &r.TransactionID, &r.RequesterID, &r.Message, &r.Status,
			&r.RequestedAt, &r.EvaluatorID, &r.Answer, &r.AnsweredAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetGlobalConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	var c domain.GlobalConfig
	err := s.pool.QueryRow(ctx,
		`SELECT id, org_name, org_tax_id, org_address, org_slogan, updated_by::text, updated_at
		 FROM global_config WHERE id = $1`,
		domain.GlobalConfigID,
	).Scan(&c.ID, &c.OrgName, &c.OrgTaxID, &c.OrgAddress, &c.OrgSlogan, &c.UpdatedBy, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "global config", "1")
	}
	return &c, nil
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, actor_id::text, action, entity_type, entity_id, details, host, created_at
		 FROM audit_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var e domain.AuditLog
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.Host, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
