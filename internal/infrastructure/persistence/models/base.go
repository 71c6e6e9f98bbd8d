// Package models maps the billing domain aggregates onto relational rows.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// ToDomainAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// TombstoneModel carries the explicit soft-delete timestamp. A plain
// *time.Time rather than gorm.DeletedAt keeps tombstone filtering a
// per-query decision instead of an implicit global one.
type TombstoneModel struct {
	DeletedAt *time.Time `gorm:"index"`
}

// ToDomainTombstone converts to the domain Tombstone
func (m *TombstoneModel) ToDomainTombstone() shared.Tombstone {
	return shared.Tombstone{DeletedAt: m.DeletedAt}
}

// FromDomainTombstone populates from the domain Tombstone
func (m *TombstoneModel) FromDomainTombstone(t shared.Tombstone) {
	m.DeletedAt = t.DeletedAt
}
