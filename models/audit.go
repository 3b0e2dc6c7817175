package models

import "time"

// AuditRecord captures one state-changing mutation after it committed.
// Records are append-only and never block the mutation they describe.
type AuditRecord struct {
	ID         string    `bson:"id" json:"id"`
	Actor      string    `bson:"actor" json:"actor"` // requester ID or "admin:<id>"
	Action     string    `bson:"action" json:"action"`
	EntityType string    `bson:"entityType" json:"entityType"` // "booking", "timeslot", "feedback", "offering"
	EntityID   string    `bson:"entityId" json:"entityId"`
	FromStatus string    `bson:"fromStatus,omitempty" json:"fromStatus,omitempty"`
	ToStatus   string    `bson:"toStatus,omitempty" json:"toStatus,omitempty"`
	At         time.Time `bson:"at" json:"at"`
}
