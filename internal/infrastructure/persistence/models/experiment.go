package models

import (
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/ontology"
)

// ExperimentModel is the persistence model for the Experiment aggregate
type ExperimentModel struct {
	AggregateModel
	ProjectID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Name      string            `gorm:"type:varchar(255);not null"`
	Species   []ontology.Term   `gorm:"type:text;serializer:json"`
	Specimens []ontology.Term   `gorm:"type:text;serializer:json"`
	Analytes  []ontology.Term   `gorm:"type:text;serializer:json"`
	Design    experiment.Design `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (ExperimentModel) TableName() string {
	return "experiments"
}

// ToDomain converts the persistence model to a domain Experiment
func (m *ExperimentModel) ToDomain() *experiment.Experiment {
	e := &experiment.Experiment{
		BaseAggregateRoot: m.Root(),
		ProjectID:         m.ProjectID,
		Name:              m.Name,
		Species:           nonNilTerms(m.Species),
		Specimens:         nonNilTerms(m.Specimens),
		Analytes:          nonNilTerms(m.Analytes),
		Design:            m.Design,
	}
	if e.Design.Variables == nil {
		e.Design.Variables = []experiment.Variable{}
	}
	if e.Design.Groups == nil {
		e.Design.Groups = []experiment.Group{}
	}
	return e
}

// FromDomain populates the persistence model from a domain Experiment
func (m *ExperimentModel) FromDomain(e *experiment.Experiment) {
	m.SetRoot(e.BaseAggregateRoot)
	m.ProjectID = e.ProjectID
	m.Name = e.Name
	m.Species = e.Species
	m.Specimens = e.Specimens
	m.Analytes = e.Analytes
	m.Design = e.Design
}

// ExperimentModelFromDomain creates a new persistence model from a domain Experiment
func ExperimentModelFromDomain(e *experiment.Experiment) *ExperimentModel {
	m := &ExperimentModel{}
	m.FromDomain(e)
	return m
}

func nonNilTerms(terms []ontology.Term) []ontology.Term {
	if terms == nil {
		return []ontology.Term{}
	}
	return terms
}

// ConfoundingVariableModel is the persistence model for confounding variables
type ConfoundingVariableModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExperimentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (ConfoundingVariableModel) TableName() string {
	return "confounding_variables"
}

// ToDomain converts the model to a domain ConfoundingVariable
func (m *ConfoundingVariableModel) ToDomain() experiment.ConfoundingVariable {
	return experiment.ConfoundingVariable{ID: m.ID, ExperimentID: m.ExperimentID, Name: m.Name}
}

// ConfoundingLevelModel stores the value a sample has for a confounding variable
type ConfoundingLevelModel struct {
	VariableID uuid.UUID `gorm:"type:uuid;primaryKey"`
	SampleID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Value      string    `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (ConfoundingLevelModel) TableName() string {
	return "confounding_levels"
}

// ToDomain converts the model to a domain ConfoundingLevel
func (m *ConfoundingLevelModel) ToDomain() experiment.ConfoundingLevel {
	return experiment.ConfoundingLevel{VariableID: m.VariableID, SampleID: m.SampleID, Value: m.Value}
}
