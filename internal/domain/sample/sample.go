package sample

import (
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// Origin describes where a sample comes from
type Origin struct {
	Species  ontology.Term `json:"species"`
	Specimen ontology.Term `json:"specimen"`
	Analyte  ontology.Term `json:"analyte"`
}

// Sample is a biological sample registered in a project
type Sample struct {
	shared.BaseAggregateRoot
	Code                Code
	ProjectID           uuid.UUID
	ExperimentID        uuid.UUID
	ExperimentalGroupID uuid.UUID
	BatchID             uuid.UUID
	Label               string
	BiologicalReplicate string
	Origin              Origin
	AnalysisMethod      AnalysisMethod
	Comment             string
}

// Registration carries the information needed to register a sample
type Registration struct {
	Label               string
	BiologicalReplicate string
	ExperimentID        uuid.UUID
	ExperimentalGroupID uuid.UUID
	Origin              Origin
	AnalysisMethod      AnalysisMethod
	Comment             string
}

// NewSample creates a sample in a batch
func NewSample(code Code, projectID, batchID uuid.UUID, reg Registration) (*Sample, error) {
	if code == "" {
		return nil, ErrInvalidSampleCode
	}
	if projectID == uuid.Nil || reg.ExperimentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SAMPLE", "Sample needs a project and an experiment")
	}
	label := strings.TrimSpace(reg.Label)
	if label == "" {
		return nil, shared.NewDomainError("INVALID_SAMPLE", "Sample label must not be empty")
	}
	s := &Sample{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Code:                code,
		ProjectID:           projectID,
		ExperimentID:        reg.ExperimentID,
		ExperimentalGroupID: reg.ExperimentalGroupID,
		BatchID:             batchID,
		Label:               label,
		BiologicalReplicate: strings.TrimSpace(reg.BiologicalReplicate),
		Origin:              reg.Origin,
		AnalysisMethod:      reg.AnalysisMethod,
		Comment:             strings.TrimSpace(reg.Comment),
	}
	s.AddDomainEvent(NewSampleRegisteredEvent(s))
	return s, nil
}

// Update replaces the editable information of a sample
func (s *Sample) Update(reg Registration) error {
	label := strings.TrimSpace(reg.Label)
	if label == "" {
		return shared.NewDomainError("INVALID_SAMPLE", "Sample label must not be empty")
	}
	s.Label = label
	s.BiologicalReplicate = strings.TrimSpace(reg.BiologicalReplicate)
	if reg.ExperimentalGroupID != uuid.Nil {
		s.ExperimentalGroupID = reg.ExperimentalGroupID
	}
	s.Origin = reg.Origin
	s.AnalysisMethod = reg.AnalysisMethod
	s.Comment = strings.TrimSpace(reg.Comment)
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewSampleUpdatedEvent(s))
	return nil
}

// MarkDeleted records the deletion event; removal happens in the repository
func (s *Sample) MarkDeleted() {
	s.AddDomainEvent(NewSampleDeletedEvent(s))
}
