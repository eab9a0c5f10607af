// Package audit appends tamper-evident entries to the audit trail. An
// entry is always written inside the caller's transaction so a mutation
// and its audit row commit or roll back together.
package audit

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/session"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// Recorder writes audit entries attributed to the actor bound to the
// request context. The originating host name is captured once at
// construction.
type Recorder struct {
	host string
}

// NewRecorder resolves the local host name.
func NewRecorder() *Recorder {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return &Recorder{host: host}
}

// Record stages one audit entry in tx. It fails when no actor is bound,
// which aborts the enclosing unit of work: no mutation may commit without
// attribution. Empty entityType, entityID and details are stored as NULL.
func (r *Recorder) Record(ctx context.Context, tx storage.Tx, action, entityType, entityID, details string) error {
	actor, ok := session.Actor(ctx)
	if !ok {
		return apperr.Constraint(storage.ConstraintAuditActor, nil)
	}
	entry := &domain.AuditLog{
		ID:         uuid.NewString(),
		ActorID:    actor.ID,
		Action:     action,
		EntityType: optional(entityType),
		EntityID:   optional(entityID),
		Details:    optional(details),
		Host:       r.host,
		CreatedAt:  time.Now().UTC(),
	}
	return tx.InsertAuditLog(ctx, entry)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
