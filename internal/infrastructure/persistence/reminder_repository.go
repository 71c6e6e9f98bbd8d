package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/persistence/models"
)

// GormReminderRepository implements billing.ReminderRepository using GORM
type GormReminderRepository struct {
	db *gorm.DB
}

// NewGormReminderRepository creates a new GormReminderRepository
func NewGormReminderRepository(db *gorm.DB) *GormReminderRepository {
	return &GormReminderRepository{db: db}
}

// FindByInvoice returns the reminder history of an invoice, newest first.
func (r *GormReminderRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Reminder, error) {
	var reminderModels []models.ReminderModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("sent_at DESC").
		Find(&reminderModels).Error; err != nil {
		return nil, err
	}
	reminders := make([]billing.Reminder, len(reminderModels))
	for i, model := range reminderModels {
		reminders[i] = *model.ToDomain()
	}
	return reminders, nil
}

// FindLatestByInvoice returns the most recently sent reminder of any type,
// or nil when the invoice has never been reminded. The cooldown check keys
// off this row.
func (r *GormReminderRepository) FindLatestByInvoice(ctx context.Context, invoiceID uuid.UUID) (*billing.Reminder, error) {
	var model models.ReminderModel
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("sent_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create appends a reminder record. Reminders are never updated or deleted.
func (r *GormReminderRepository) Create(ctx context.Context, reminder *billing.Reminder) error {
	model := models.ReminderModelFromDomain(reminder)
	return r.db.WithContext(ctx).Create(model).Error
}
