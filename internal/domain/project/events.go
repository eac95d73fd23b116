package project

import (
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// AggregateTypeProject is the aggregate type name used in events
const AggregateTypeProject = "Project"

// Event type constants for Project
const (
	EventTypeProjectCreated = "ProjectCreated"
	EventTypeProjectChanged = "ProjectChanged"
)

// ProjectCreatedEvent is published when a new project is registered
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, AggregateTypeProject, p.ID),
		ProjectID:       p.ID,
		Code:            p.Code.String(),
		Title:           p.Title,
	}
}

// ProjectChangedEvent is published whenever anything belonging to a project
// changes, including its samples, measurements and quality control files
type ProjectChangedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Change    string    `json:"change"`
}

// NewProjectChangedEvent creates a new ProjectChangedEvent
func NewProjectChangedEvent(projectID uuid.UUID, change string) *ProjectChangedEvent {
	return &ProjectChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectChanged, AggregateTypeProject, projectID),
		ProjectID:       projectID,
		Change:          change,
	}
}
