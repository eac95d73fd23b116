package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// BaseModel carries the columns every table has
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) Entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) SetEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// AggregateModel adds the version column used for optimistic locking
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) SetRoot(a shared.BaseAggregateRoot) {
	m.SetEntity(a.BaseEntity)
	m.Version = a.Version
}

// Root rebuilds the aggregate root of a loaded row. It counts as persisted,
// so the next save is an update guarded by Version.
func (m *AggregateModel) Root() shared.BaseAggregateRoot {
	root := shared.BaseAggregateRoot{BaseEntity: m.Entity(), Version: m.Version}
	root.MarkPersisted()
	return root
}
