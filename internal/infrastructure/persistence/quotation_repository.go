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

// GormQuotationRepository implements billing.QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByID finds a quotation by its ID, or returns nil when no row matches.
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*billing.Quotation, error) {
	var model models.QuotationModel
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

// FindByNumber finds a quotation by its document number.
func (r *GormQuotationRepository) FindByNumber(ctx context.Context, quotationNo string, visibility shared.Visibility) (*billing.Quotation, error) {
	var model models.QuotationModel
	query := withVisibility(r.db.WithContext(ctx), visibility).
		Preload("Items", preloadItems)
	if err := query.First(&model, "quotation_no = ?", quotationNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists live quotation headers matching the filter.
func (r *GormQuotationRepository) FindAll(ctx context.Context, filter billing.QuotationFilter) ([]billing.Quotation, error) {
	var quotationModels []models.QuotationModel
	query := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Where("deleted_at IS NULL")
	query = applyQuotationFilter(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, QuotationSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&quotationModels).Error; err != nil {
		return nil, err
	}
	quotations := make([]billing.Quotation, len(quotationModels))
	for i, model := range quotationModels {
		quotations[i] = *model.ToDomain()
	}
	return quotations, nil
}

// Count returns the number of live quotations matching the filter.
func (r *GormQuotationRepository) Count(ctx context.Context, filter billing.QuotationFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Where("deleted_at IS NULL")
	query = applyQuotationFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LockNumbersByPrefix returns all quotation numbers under the prefix with
// the rows locked FOR UPDATE, tombstoned rows included.
func (r *GormQuotationRepository) LockNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("quotation_no LIKE ?", prefix+"%").
		Order("quotation_no ASC").
		Pluck("quotation_no", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// NumberExists reports whether any row, tombstoned included, carries the number.
func (r *GormQuotationRepository) NumberExists(ctx context.Context, quotationNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Where("quotation_no = ?", quotationNo).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the quotation header and its items.
func (r *GormQuotationRepository) Create(ctx context.Context, quotation *billing.Quotation) error {
	model := models.QuotationModelFromDomain(quotation)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, quotation.ID, quotation.Items)
}

// SaveWithLock updates the quotation header conditionally on the stored
// version being one less than the in-memory version.
func (r *GormQuotationRepository) SaveWithLock(ctx context.Context, quotation *billing.Quotation) error {
	model := models.QuotationModelFromDomain(quotation)
	result := r.db.WithContext(ctx).
		Model(&models.QuotationModel{}).
		Where("id = ? AND version = ?", quotation.ID, quotation.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &shared.StaleWriteError{
			Entity:          "quotation",
			ExpectedVersion: quotation.Version - 1,
			CurrentVersion:  r.currentVersion(ctx, quotation.ID),
		}
	}
	return nil
}

// ReplaceItems deletes all items of the quotation and inserts the given set.
func (r *GormQuotationRepository) ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []billing.LineItem) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.QuotationItemModel{}, "quotation_id = ?", quotationID).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, quotationID, items)
}

// SoftDelete stamps the tombstone on the quotation row.
func (r *GormQuotationRepository) SoftDelete(ctx context.Context, quotation *billing.Quotation, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Where("id = ? AND deleted_at IS NULL", quotation.ID).
		Updates(map[string]interface{}{"deleted_at": at, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormQuotationRepository) insertItems(ctx context.Context, quotationID uuid.UUID, items []billing.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	itemModels := make([]models.QuotationItemModel, len(items))
	for i, item := range items {
		itemModels[i] = models.QuotationItemModelFromDomain(quotationID, item)
	}
	return r.db.WithContext(ctx).Create(&itemModels).Error
}

func (r *GormQuotationRepository) currentVersion(ctx context.Context, id uuid.UUID) int {
	var version int
	r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Where("id = ?", id).
		Select("version").
		Scan(&version)
	return version
}

func applyQuotationFilter(query *gorm.DB, filter billing.QuotationFilter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("quotation_no ILIKE ? OR notes ILIKE ?", pattern, pattern)
	}
	return query
}
