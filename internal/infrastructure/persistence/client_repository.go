package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/persistence/models"
)

// GormClientRepository implements billing.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID, or returns nil when no row matches.
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*billing.Client, error) {
	var model models.ClientModel
	query := withVisibility(r.db.WithContext(ctx), visibility)
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a client by its unique code.
func (r *GormClientRepository) FindByCode(ctx context.Context, code string, visibility shared.Visibility) (*billing.Client, error) {
	var model models.ClientModel
	query := withVisibility(r.db.WithContext(ctx), visibility)
	if err := query.First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns all live clients ordered by code.
func (r *GormClientRepository) FindActive(ctx context.Context) ([]billing.Client, error) {
	var clientModels []models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("code ASC").
		Find(&clientModels).Error; err != nil {
		return nil, err
	}
	clients := make([]billing.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// Create inserts a client.
func (r *GormClientRepository) Create(ctx context.Context, client *billing.Client) error {
	model := models.ClientModelFromDomain(client)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save updates a client conditionally on the stored version being one less
// than the in-memory version.
func (r *GormClientRepository) Save(ctx context.Context, client *billing.Client) error {
	model := models.ClientModelFromDomain(client)
	result := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("id = ? AND version = ?", client.ID, client.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &shared.StaleWriteError{
			Entity:          "client",
			ExpectedVersion: client.Version - 1,
			CurrentVersion:  r.currentVersion(ctx, client.ID),
		}
	}
	return nil
}

// SoftDelete stamps the tombstone on the client row. Existing documents
// keep referencing the client; IncludeDeleted reads still resolve it.
func (r *GormClientRepository) SoftDelete(ctx context.Context, client *billing.Client, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("id = ? AND deleted_at IS NULL", client.ID).
		Updates(map[string]interface{}{"deleted_at": at, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormClientRepository) currentVersion(ctx context.Context, id uuid.UUID) int {
	var version int
	r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("id = ?", id).
		Select("version").
		Scan(&version)
	return version
}
