package sample

import (
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// Aggregate type names used in events
const (
	AggregateTypeSample = "Sample"
	AggregateTypeBatch  = "Batch"
)

// Event type constants for samples and batches
const (
	EventTypeSampleRegistered = "SampleRegistered"
	EventTypeSampleUpdated    = "SampleUpdated"
	EventTypeSampleDeleted    = "SampleDeleted"
	EventTypeBatchRegistered  = "BatchRegistered"
)

// SampleRegisteredEvent is published when a sample is registered
type SampleRegisteredEvent struct {
	shared.BaseDomainEvent
	SampleID  uuid.UUID `json:"sample_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Code      string    `json:"code"`
}

// NewSampleRegisteredEvent creates a new SampleRegisteredEvent
func NewSampleRegisteredEvent(s *Sample) *SampleRegisteredEvent {
	return &SampleRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSampleRegistered, AggregateTypeSample, s.ID),
		SampleID:        s.ID,
		ProjectID:       s.ProjectID,
		Code:            s.Code.String(),
	}
}

// SampleUpdatedEvent is published when sample information changes
type SampleUpdatedEvent struct {
	shared.BaseDomainEvent
	SampleID  uuid.UUID `json:"sample_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

// NewSampleUpdatedEvent creates a new SampleUpdatedEvent
func NewSampleUpdatedEvent(s *Sample) *SampleUpdatedEvent {
	return &SampleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSampleUpdated, AggregateTypeSample, s.ID),
		SampleID:        s.ID,
		ProjectID:       s.ProjectID,
	}
}

// SampleDeletedEvent is published when a sample is deleted
type SampleDeletedEvent struct {
	shared.BaseDomainEvent
	SampleID  uuid.UUID `json:"sample_id"`
	ProjectID uuid.UUID `json:"project_id"`
	BatchID   uuid.UUID `json:"batch_id"`
}

// NewSampleDeletedEvent creates a new SampleDeletedEvent
func NewSampleDeletedEvent(s *Sample) *SampleDeletedEvent {
	return &SampleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSampleDeleted, AggregateTypeSample, s.ID),
		SampleID:        s.ID,
		ProjectID:       s.ProjectID,
		BatchID:         s.BatchID,
	}
}

// BatchRegisteredEvent is published after all samples of a batch are registered
type BatchRegisteredEvent struct {
	shared.BaseDomainEvent
	BatchID      uuid.UUID `json:"batch_id"`
	Label        string    `json:"label"`
	ProjectID    uuid.UUID `json:"project_id"`
	ProjectTitle string    `json:"project_title"`
}

// NewBatchRegisteredEvent creates a new BatchRegisteredEvent
func NewBatchRegisteredEvent(b *Batch, projectTitle string) *BatchRegisteredEvent {
	return &BatchRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchRegistered, AggregateTypeBatch, b.ID),
		BatchID:         b.ID,
		Label:           b.Label,
		ProjectID:       b.ProjectID,
		ProjectTitle:    projectTitle,
	}
}
