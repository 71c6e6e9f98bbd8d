package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/persistence/models"
)

// GormAuditLogRepository implements billing.AuditLogRepository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append inserts an audit entry. Entries are never updated or deleted.
func (r *GormAuditLogRepository) Append(ctx context.Context, entry *billing.AuditLog) error {
	model := models.AuditLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByTarget returns the audit trail of a single document, newest first.
func (r *GormAuditLogRepository) FindByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]billing.AuditLog, error) {
	var entryModels []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]billing.AuditLog, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}
