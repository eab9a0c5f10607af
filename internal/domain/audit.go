package domain

import "time"

// AuditLog is one immutable entry of the audit trail. Entries are written
// only by the audit recorder, inside the transaction of the mutation they
// document, and are never updated or deleted.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    string    `db:"actor_id" json:"actor_id"`
	Action     string    `db:"action" json:"action"`
	EntityType *string   `db:"entity_type" json:"entity_type,omitempty"`
	EntityID   *string   `db:"entity_id" json:"entity_id,omitempty"`
	Details    *string   `db:"details" json:"details,omitempty"`
	Host       string    `db:"host" json:"host"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
