package experiment

import (
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// AggregateTypeExperiment is the aggregate type name used in events
const AggregateTypeExperiment = "Experiment"

// Event type constants for Experiment
const (
	EventTypeExperimentCreated = "ExperimentCreated"
	EventTypeExperimentUpdated = "ExperimentUpdated"
)

// ExperimentCreatedEvent is published when an experiment is added to a project
type ExperimentCreatedEvent struct {
	shared.BaseDomainEvent
	ExperimentID uuid.UUID `json:"experiment_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	Name         string    `json:"name"`
}

// NewExperimentCreatedEvent creates a new ExperimentCreatedEvent
func NewExperimentCreatedEvent(e *Experiment) *ExperimentCreatedEvent {
	return &ExperimentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExperimentCreated, AggregateTypeExperiment, e.ID),
		ExperimentID:    e.ID,
		ProjectID:       e.ProjectID,
		Name:            e.Name,
	}
}

// ExperimentUpdatedEvent is published when an experiment or its design changes
type ExperimentUpdatedEvent struct {
	shared.BaseDomainEvent
	ExperimentID uuid.UUID `json:"experiment_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	Change       string    `json:"change"`
}

// NewExperimentUpdatedEvent creates a new ExperimentUpdatedEvent
func NewExperimentUpdatedEvent(e *Experiment, change string) *ExperimentUpdatedEvent {
	return &ExperimentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExperimentUpdated, AggregateTypeExperiment, e.ID),
		ExperimentID:    e.ID,
		ProjectID:       e.ProjectID,
		Change:          change,
	}
}
