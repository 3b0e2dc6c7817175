package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	auditRepo "istishara/database/repository/audit"
	"istishara/models"
)

// Recorder emits audit records for state-changing mutations after the
// owning transaction has committed. Emission is best-effort: a failed
// audit write is logged, never propagated.
type Recorder struct {
	Repo   auditRepo.AuditRepository
	Logger *zap.Logger
}

func NewRecorder(repo auditRepo.AuditRepository, logger *zap.Logger) *Recorder {
	return &Recorder{Repo: repo, Logger: logger}
}

// Record persists one audit entry asynchronously.
func (r *Recorder) Record(actor, action, entityType, entityID, fromStatus, toStatus string) {
	if r == nil || r.Repo == nil {
		return
	}
	rec := &models.AuditRecord{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		At:         time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Repo.Create(ctx, rec); err != nil {
			r.Logger.Warn("audit record write failed",
				zap.String("action", action),
				zap.String("entityId", entityID),
				zap.Error(err))
		}
	}()
	r.Logger.Info("audit",
		zap.String("actor", actor),
		zap.String("action", action),
		zap.String("entity", entityType+"/"+entityID),
		zap.String("from", fromStatus),
		zap.String("to", toStatus))
}
