package access

import (
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

const aggregateTypeProject = "Project"

// EventTypeAccessGranted is published when a user gets access to a project
const EventTypeAccessGranted = "ProjectAccessGranted"

// AccessGrantedEvent informs the user that a project was shared
type AccessGrantedEvent struct {
	shared.BaseDomainEvent
	ProjectID  uuid.UUID  `json:"project_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Permission Permission `json:"permission"`
}

// NewAccessGrantedEvent creates a new AccessGrantedEvent
func NewAccessGrantedEvent(projectID, userID uuid.UUID, permission Permission) *AccessGrantedEvent {
	return &AccessGrantedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccessGranted, aggregateTypeProject, projectID),
		ProjectID:       projectID,
		UserID:          userID,
		Permission:      permission,
	}
}
