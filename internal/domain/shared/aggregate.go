package shared

import "github.com/google/uuid"

// AggregateRoot is what repositories save and the event bus publishes from
type AggregateRoot interface {
	GetID() uuid.UUID
	GetVersion() int
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds the optimistic lock version and pending events to
// BaseEntity. Version starts at 1 and every mutation increments it once.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	events []DomainEvent
	// zero until the aggregate was loaded from or written to storage
	persistedVersion int
}

// NewBaseAggregateRoot creates an unsaved aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// GetVersion returns the current version
func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// IncrementVersion marks one mutation
func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// PersistedVersion is the version repositories compare against on update
func (a *BaseAggregateRoot) PersistedVersion() int { return a.persistedVersion }

// MarkPersisted records the current version as stored
func (a *BaseAggregateRoot) MarkPersisted() { a.persistedVersion = a.Version }

// IsDirty reports whether there is anything to write
func (a *BaseAggregateRoot) IsDirty() bool {
	return a.persistedVersion == 0 || a.persistedVersion != a.Version
}

// AddDomainEvent queues an event for publication after the next save
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// GetDomainEvents returns the queued events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.events }

// ClearDomainEvents drops the queued events
func (a *BaseAggregateRoot) ClearDomainEvents() { a.events = nil }
