package auditRepo

import (
	"context"

	"istishara/database"
	"istishara/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AuditRepository persists append-only audit records.
type AuditRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditRecord, error)
}

type mongoAuditRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditRepo constructs a new MongoDB AuditRepository.
func NewMongoAuditRepo() AuditRepository {
	return &mongoAuditRepo{
		coll: database.DB().Collection("audit_records"),
	}
}
