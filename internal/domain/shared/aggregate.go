package shared

import "time"

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots.
// Version implements optimistic concurrency control: it starts at 1 and is
// incremented exactly once per committed mutation.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// Tombstone marks a row as soft-deleted via an explicit timestamp. Queries
// must state whether they include tombstoned rows (see Visibility); there is
// no implicit global filter.
type Tombstone struct {
	DeletedAt *time.Time
}

// IsDeleted reports whether the row has been soft-deleted.
func (t *Tombstone) IsDeleted() bool {
	return t.DeletedAt != nil
}

// MarkDeleted stamps the tombstone. No-op if already deleted.
func (t *Tombstone) MarkDeleted(at time.Time) {
	if t.DeletedAt == nil {
		t.DeletedAt = &at
	}
}

// Restore clears the tombstone.
func (t *Tombstone) Restore() {
	t.DeletedAt = nil
}

// Visibility states how a query treats tombstoned rows. Every repository
// read method takes one explicitly; document numbering scans use
// IncludeDeleted, ordinary listings use ExcludeDeleted.
type Visibility int

const (
	ExcludeDeleted Visibility = iota
	IncludeDeleted
)
