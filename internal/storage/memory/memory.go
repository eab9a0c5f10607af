// Package memory is an in-process Store used by tests and local runs.
// It enforces the same named constraints as the Postgres schema so a
// service sees identical StorageConstraintError values from either store.
// Writes stage inside a Tx and apply atomically at Commit under one lock;
// rows read with ForUpdate carry an optimistic status check so the first
// committer wins, mirroring row locking in Postgres.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// Store keeps all entities in maps guarded by one RWMutex.
type Store struct {
	mu           sync.RWMutex
	banks        map[string]domain.Bank
	concepts     map[string]domain.Concept
	users        map[string]domain.User
	transactions map[string]domain.Transaction
	reversals    map[string]domain.ReversalRequest
	config       *domain.GlobalConfig
	audit        []domain.AuditLog
}

var _ storage.Store = (*Store)(nil)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		banks:        make(map[string]domain.Bank),
		concepts:     make(map[string]domain.Concept),
		users:        make(map[string]domain.User),
		transactions: make(map[string]domain.Transaction),
		reversals:    make(map[string]domain.ReversalRequest),
	}
}

// Close is a no-op; the store has no external resources.
func (s *Store) Close() {}

// Begin opens a staged unit of work.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memTx{
		s:            s,
		banks:        make(map[string]domain.Bank),
		concepts:     make(map[string]domain.Concept),
		users:        make(map[string]domain.User),
		transactions: make(map[string]domain.Transaction),
		reversals:    make(map[string]domain.ReversalRequest),
		expectTx:     make(map[string]domain.TransactionStatus),
		expectRev:    make(map[string]domain.ReversalStatus),
	}, nil
}

func (s *Store) GetBank(ctx context.Context, id string) (*domain.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.banks[id]
	if !ok {
		return nil, apperr.NotFound("bank", id)
	}
	return &b, nil
}

func (s *Store) GetBankByName(ctx context.Context, name string) (*domain.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.banks {
		if b.Name == name {
			b := b
			return &b, nil
		}
	}
	return nil, apperr.NotFound("bank", name)
}

func (s *Store) ListBanks(ctx context.Context, onlyActive bool) ([]domain.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Bank, 0, len(s.banks))
	for _, b := range s.banks {
		if onlyActive && !b.Active {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetConcept(ctx context.Context, id string) (*domain.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.concepts[id]
	if !ok {
		return nil, apperr.NotFound("concept", id)
	}
	return &c, nil
}

func (s *Store) GetConceptByName(ctx context.Context, name string) (*domain.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.concepts {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, apperr.NotFound("concept", name)
}

func (s *Store) ListConcepts(ctx context.Context, onlyActive bool) ([]domain.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Concept, 0, len(s.concepts))
	for _, c := range s.concepts {
		if onlyActive && !c.Active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user", username)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, apperr.NotFound("transaction", id)
	}
	return &t, nil
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetReversalRequest(ctx context.Context, id string) (*domain.ReversalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reversals[id]
	if !ok {
		return nil, apperr.NotFound("reversal request", id)
	}
	return &r, nil
}

func (s *Store) ListReversalRequests(ctx context.Context, status *domain.ReversalStatus, limit int) ([]domain.ReversalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ReversalRequest, 0, len(s.reversals))
	for _, r := range s.reversals {
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetGlobalConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return nil, apperr.NotFound("global config", "1")
	}
	c := *s.config
	return &c, nil
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.audit)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.AuditLog, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.audit[i])
	}
	return out, nil
}

// memTx stages writes until Commit. Constraint checks run both when a
// write is staged and again under the store's write lock at Commit, so a
// concurrent committer cannot slip a duplicate in between.
type memTx struct {
	s    *Store
	done bool

	banks        map[string]domain.Bank
	concepts     map[string]domain.Concept
	users        map[string]domain.User
	transactions map[string]domain.Transaction
	reversals    map[string]domain.ReversalRequest
	config       *domain.GlobalConfig
	audit        []domain.AuditLog

	expectTx  map[string]domain.TransactionStatus
	expectRev map[string]domain.ReversalStatus
}

var _ storage.Tx = (*memTx)(nil)

func (t *memTx) InsertBank(ctx context.Context, b *domain.Bank) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if err := t.checkBank(b); err != nil {
		return err
	}
	t.banks[b.ID] = *b
	return nil
}

func (t *memTx) UpdateBank(ctx context.Context, b *domain.Bank) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if _, staged := t.banks[b.ID]; !staged {
		if _, ok := t.s.banks[b.ID]; !ok {
			return apperr.NotFound("bank", b.ID)
		}
	}
	if err := t.checkBank(b); err != nil {
		return err
	}
	t.banks[b.ID] = *b
	return nil
}

// checkBank validates under at least a read lock.
func (t *memTx) checkBank(b *domain.Bank) error {
	if strings.TrimSpace(b.Name) == "" {
		return apperr.Constraint(storage.ConstraintBankNameNotEmpty, nil)
	}
	for id, other := range t.s.banks {
		if id != b.ID && other.Name == b.Name {
			return apperr.Constraint(storage.ConstraintBankName, nil)
		}
	}
	for id, other := range t.banks {
		if id != b.ID && other.Name == b.Name {
			return apperr.Constraint(storage.ConstraintBankName, nil)
		}
	}
	return nil
}

func (t *memTx) InsertConcept(ctx context.Context, c *domain.Concept) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if err := t.checkConcept(c); err != nil {
		return err
	}
	t.concepts[c.ID] = *c
	return nil
}

func (t *memTx) UpdateConcept(ctx context.Context, c *domain.Concept) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if _, staged := t.concepts[c.ID]; !staged {
		if _, ok := t.s.concepts[c.ID]; !ok {
			return apperr.NotFound("concept", c.ID)
		}
	}
	if err := t.checkConcept(c); err != nil {
		return err
	}
	t.concepts[c.ID] = *c
	return nil
}

func (t *memTx) checkConcept(c *domain.Concept) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Constraint(storage.ConstraintConceptNameEmpty, nil)
	}
	if err := c.Type.ValidateValue(c.Value); err != nil {
		return apperr.Constraint(storage.ConstraintConceptValue, err)
	}
	for id, other := range t.s.concepts {
		if id != c.ID && other.Name == c.Name {
			return apperr.Constraint(storage.ConstraintConceptName, nil)
		}
	}
	for id, other := range t.concepts {
		if id != c.ID && other.Name == c.Name {
			return apperr.Constraint(storage.ConstraintConceptName, nil)
		}
	}
	return nil
}

func (t *memTx) InsertUser(ctx context.Context, u *domain.User) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if err := t.checkUser(u); err != nil {
		return err
	}
	t.users[u.ID] = *u
	return nil
}

func (t *memTx) UpdateUser(ctx context.Context, u *domain.User) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if _, staged := t.users[u.ID]; !staged {
		if _, ok := t.s.users[u.ID]; !ok {
			return apperr.NotFound("user", u.ID)
		}
	}
	if err := t.checkUser(u); err != nil {
		return err
	}
	t.users[u.ID] = *u
	return nil
}

func (t *memTx) checkUser(u *domain.User) error {
	for id, other := range t.s.users {
		if id != u.ID && other.Username == u.Username {
			return apperr.Constraint(storage.ConstraintUserUsername, nil)
		}
	}
	for id, other := range t.users {
		if id != u.ID && other.Username == u.Username {
			return apperr.Constraint(storage.ConstraintUserUsername, nil)
		}
	}
	return nil
}

func (t *memTx) InsertTransaction(ctx context.Context, tr *domain.Transaction) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	t.transactions[tr.ID] = *tr
	return nil
}

func (t *memTx) UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	tr, staged := t.transactions[id]
	if !staged {
		committed, ok := t.s.transactions[id]
		if !ok {
			return apperr.NotFound("transaction", id)
		}
		tr = committed
	}
	tr.Status = status
	t.transactions[id] = tr
	return nil
}

func (t *memTx) GetTransactionForUpdate(ctx context.Context, id string) (*domain.Transaction, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if tr, staged := t.transactions[id]; staged {
		return &tr, nil
	}
	tr, ok := t.s.transactions[id]
	if !ok {
		return nil, apperr.NotFound("transaction", id)
	}
	// Remember the committed status; Commit refuses if someone else moved
	// the row first.
	t.expectTx[id] = tr.Status
	return &tr, nil
}

func (t *memTx) InsertReversalRequest(ctx context.Context, r *domain.ReversalRequest) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if err := t.checkReversal(r); err != nil {
		return err
	}
	t.reversals[r.ID] = *r
	return nil
}

func (t *memTx) UpdateReversalRequest(ctx context.Context, r *domain.ReversalRequest) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if _, staged := t.reversals[r.ID]; !staged {
		if _, ok := t.s.reversals[r.ID]; !ok {
			return apperr.NotFound("reversal request", r.ID)
		}
	}
	t.reversals[r.ID] = *r
	return nil
}

func (t *memTx) checkReversal(r *domain.ReversalRequest) error {
	for id, other := range t.s.reversals {
		if id != r.ID && other.TransactionID == r.TransactionID {
			return apperr.Constraint(storage.ConstraintReversalPerTx, nil)
		}
	}
	for id, other := range t.reversals {
		if id != r.ID && other.TransactionID == r.TransactionID {
			return apperr.Constraint(storage.ConstraintReversalPerTx, nil)
		}
	}
	return nil
}

func (t *memTx) GetReversalForUpdate(ctx context.Context, id string) (*domain.ReversalRequest, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if r, staged := t.reversals[id]; staged {
		return &r, nil
	}
	r, ok := t.s.reversals[id]
	if !ok {
		return nil, apperr.NotFound("reversal request", id)
	}
	t.expectRev[id] = r.Status
	return &r, nil
}

func (t *memTx) UpsertGlobalConfig(ctx context.Context, c *domain.GlobalConfig) error {
	if c.ID != domain.GlobalConfigID {
		return apperr.Constraint(storage.ConstraintGlobalConfigRow, nil)
	}
	if c.UpdatedBy == "" {
		return apperr.Constraint(storage.ConstraintGlobalConfigOwner, nil)
	}
	cc := *c
	t.config = &cc
	return nil
}

func (t *memTx) InsertAuditLog(ctx context.Context, e *domain.AuditLog) error {
	if e.ActorID == "" {
		return apperr.Constraint(storage.ConstraintAuditActor, nil)
	}
	t.audit = append(t.audit, *e)
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true

	// Optimistic checks: rows read ForUpdate must still hold the status
	// observed at read time. First committer wins.
	for id, status := range t.expectTx {
		cur, ok := t.s.transactions[id]
		if !ok || cur.Status != status {
			return apperr.Constraint("stale_row", nil)
		}
	}
	for id, status := range t.expectRev {
		cur, ok := t.s.reversals[id]
		if !ok || cur.Status != status {
			return apperr.Constraint("stale_row", nil)
		}
	}

	// Re-run uniqueness checks against whatever committed since staging.
	for id := range t.banks {
		b := t.banks[id]
		if err := t.checkBankCommitted(&b); err != nil {
			return err
		}
	}
	for id := range t.concepts {
		c := t.concepts[id]
		if err := t.checkConceptCommitted(&c); err != nil {
			return err
		}
	}
	for id := range t.users {
		u := t.users[id]
		if err := t.checkUserCommitted(&u); err != nil {
			return err
		}
	}
	for _, r := range t.reversals {
		for otherID, other := range t.s.reversals {
			if otherID != r.ID && other.TransactionID == r.TransactionID {
				return apperr.Constraint(storage.ConstraintReversalPerTx, nil)
			}
		}
	}
	for i := range t.audit {
		if t.audit[i].ActorID == "" {
			return apperr.Constraint(storage.ConstraintAuditActor, nil)
		}
	}

	for id, b := range t.banks {
		t.s.banks[id] = b
	}
	for id, c := range t.concepts {
		t.s.concepts[id] = c
	}
	for id, u := range t.users {
		t.s.users[id] = u
	}
	for id, tr := range t.transactions {
		t.s.transactions[id] = tr
	}
	for id, r := range t.reversals {
		t.s.reversals[id] = r
	}
	if t.config != nil {
		cc := *t.config
		t.s.config = &cc
	}
	t.s.audit = append(t.s.audit, t.audit...)
	return nil
}

func (t *memTx) checkBankCommitted(b *domain.Bank) error {
	for id, other := range t.s.banks {
		if id != b.ID && other.Name == b.Name {
			return apperr.Constraint(storage.ConstraintBankName, nil)
		}
	}
	return nil
}

func (t *memTx) checkConceptCommitted(c *domain.Concept) error {
	for id, other := range t.s.concepts {
		if id != c.ID && other.Name == c.Name {
			return apperr.Constraint(storage.ConstraintConceptName, nil)
		}
	}
	return nil
}

func (t *memTx) checkUserCommitted(u *domain.User) error {
	for id, other := range t.s.users {
		if id != u.ID && other.Username == u.Username {
			return apperr.Constraint(storage.ConstraintUserUsername, nil)
		}
	}
	return nil
}

// Rollback discards the staged writes. Safe to call after Commit.
func (t *memTx) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}
