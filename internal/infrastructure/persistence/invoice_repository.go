package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// withVisibility applies the tombstone filter for the requested visibility.
func withVisibility(query *gorm.DB, visibility shared.Visibility) *gorm.DB {
	if visibility == shared.ExcludeDeleted {
		return query.Where("deleted_at IS NULL")
	}
	return query
}

// FindByID finds an invoice by its ID, or returns nil when no row matches.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*billing.Invoice, error) {
	var model models.InvoiceModel
	query := withVisibility(r.db.WithContext(ctx), visibility).
		Preload("Items", preloadItems)
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its document number.
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNo string, visibility shared.Visibility) (*billing.Invoice, error) {
	var model models.InvoiceModel
	query := withVisibility(r.db.WithContext(ctx), visibility).
		Preload("Items", preloadItems)
	if err := query.First(&model, "invoice_no = ?", invoiceNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists live invoice headers matching the filter. A zero PageSize
// disables pagination; the overdue sweep and the export rely on that.
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("deleted_at IS NULL")
	query = applyInvoiceFilter(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Count returns the number of live invoices matching the filter.
func (r *GormInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("deleted_at IS NULL")
	query = applyInvoiceFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LockNumbersByPrefix returns all invoice numbers under the prefix with the
// rows locked FOR UPDATE until the surrounding transaction ends. Tombstoned
// rows are included so their numbers stay burned.
func (r *GormInvoiceRepository) LockNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("invoice_no LIKE ?", prefix+"%").
		Order("invoice_no ASC").
		Pluck("invoice_no", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// NumberExists reports whether any row, tombstoned included, carries the number.
func (r *GormInvoiceRepository) NumberExists(ctx context.Context, invoiceNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("invoice_no = ?", invoiceNo).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsForQuotation reports whether a live invoice references the quotation.
func (r *GormInvoiceRepository) ExistsForQuotation(ctx context.Context, quotationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("quotation_id = ? AND deleted_at IS NULL", quotationID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the invoice header and its items.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, invoice.ID, invoice.Items)
}

// SaveWithLock updates the invoice header conditionally on the stored version
// being one less than the in-memory version. Zero rows affected means another
// writer committed first and surfaces as a StaleWriteError.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &shared.StaleWriteError{
			Entity:          "invoice",
			ExpectedVersion: invoice.Version - 1,
			CurrentVersion:  r.currentVersion(ctx, invoice.ID),
		}
	}
	return nil
}

// ReplaceItems deletes all items of the invoice and inserts the given set.
func (r *GormInvoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []billing.LineItem) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.InvoiceItemModel{}, "invoice_id = ?", invoiceID).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, invoiceID, items)
}

// SoftDelete stamps the tombstone on the invoice row. The number stays
// burned for gapless numbering.
func (r *GormInvoiceRepository) SoftDelete(ctx context.Context, invoice *billing.Invoice, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("id = ? AND deleted_at IS NULL", invoice.ID).
		Updates(map[string]interface{}{"deleted_at": at, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormInvoiceRepository) insertItems(ctx context.Context, invoiceID uuid.UUID, items []billing.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	itemModels := make([]models.InvoiceItemModel, len(items))
	for i, item := range items {
		itemModels[i] = models.InvoiceItemModelFromDomain(invoiceID, item)
	}
	return r.db.WithContext(ctx).Create(&itemModels).Error
}

func (r *GormInvoiceRepository) currentVersion(ctx context.Context, id uuid.UUID) int {
	var version int
	r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("id = ?", id).
		Select("version").
		Scan(&version)
	return version
}

func applyInvoiceFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IssueFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssueFrom)
	}
	if filter.IssueTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssueTo)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("status = ?", billing.InvoiceStatusOverdue)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_no ILIKE ? OR notes ILIKE ?", pattern, pattern)
	}
	return query
}
