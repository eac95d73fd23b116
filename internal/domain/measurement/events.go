package measurement

import (
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// AggregateTypeMeasurement is the aggregate type name used in events
const AggregateTypeMeasurement = "Measurement"

// Event type constants for measurements
const (
	EventTypeMeasurementRegistered = "MeasurementRegistered"
	EventTypeMeasurementUpdated    = "MeasurementUpdated"
	EventTypeMeasurementDeleted    = "MeasurementDeleted"
)

// MeasurementEvent is published for registered, updated and deleted measurements
type MeasurementEvent struct {
	shared.BaseDomainEvent
	MeasurementID uuid.UUID `json:"measurement_id"`
	ProjectID     uuid.UUID `json:"project_id"`
	Code          string    `json:"code"`
}

func newMeasurementEvent(eventType string, m *Measurement) *MeasurementEvent {
	return &MeasurementEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeMeasurement, m.ID),
		MeasurementID:   m.ID,
		ProjectID:       m.ProjectID,
		Code:            m.Code.String(),
	}
}

// NewMeasurementRegisteredEvent creates a MeasurementRegistered event
func NewMeasurementRegisteredEvent(m *Measurement) *MeasurementEvent {
	return newMeasurementEvent(EventTypeMeasurementRegistered, m)
}

// NewMeasurementUpdatedEvent creates a MeasurementUpdated event
func NewMeasurementUpdatedEvent(m *Measurement) *MeasurementEvent {
	return newMeasurementEvent(EventTypeMeasurementUpdated, m)
}

// NewMeasurementDeletedEvent creates a MeasurementDeleted event
func NewMeasurementDeletedEvent(m *Measurement) *MeasurementEvent {
	return newMeasurementEvent(EventTypeMeasurementDeleted, m)
}
