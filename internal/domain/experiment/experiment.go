// Package experiment contains the Experiment aggregate with its
// experimental design and confounding variables.
package experiment

import (
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// DefaultName is used when an experiment is created without a name
const DefaultName = "Unnamed Experiment"

var (
	ErrNoSpeciesDefined  = shared.NewDomainError("NO_SPECIES_DEFINED", "No species defined")
	ErrNoSpecimenDefined = shared.NewDomainError("NO_SPECIMEN_DEFINED", "No specimen defined")
	ErrNoAnalyteDefined  = shared.NewDomainError("NO_ANALYTE_DEFINED", "No analyte defined")
)

// Experiment is an aggregate root describing what is studied within a project
type Experiment struct {
	shared.BaseAggregateRoot
	ProjectID uuid.UUID
	Name      string
	Species   []ontology.Term
	Specimens []ontology.Term
	Analytes  []ontology.Term
	Design    Design
}

// NewExperiment creates an experiment for a project
func NewExperiment(projectID uuid.UUID, name string, species, specimens, analytes []ontology.Term) (*Experiment, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	e := &Experiment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		Name:              name,
	}
	e.AddSpecies(species...)
	e.AddSpecimens(specimens...)
	e.AddAnalytes(analytes...)
	e.AddDomainEvent(NewExperimentCreatedEvent(e))
	return e, nil
}

// Rename changes the experiment name
func (e *Experiment) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_EXPERIMENT_NAME", "Experiment name must not be empty")
	}
	if name == e.Name {
		return nil
	}
	e.Name = name
	e.updated("name")
	return nil
}

// AddSpecies adds species terms, skipping known ones
func (e *Experiment) AddSpecies(terms ...ontology.Term) {
	e.Species = ontology.AppendDistinct(e.Species, terms...)
}

// AddSpecimens adds specimen terms, skipping known ones
func (e *Experiment) AddSpecimens(terms ...ontology.Term) {
	e.Specimens = ontology.AppendDistinct(e.Specimens, terms...)
}

// AddAnalytes adds analyte terms, skipping known ones
func (e *Experiment) AddAnalytes(terms ...ontology.Term) {
	e.Analytes = ontology.AppendDistinct(e.Analytes, terms...)
}

// SetSpecies replaces the species
func (e *Experiment) SetSpecies(terms []ontology.Term) error {
	if len(terms) == 0 {
		return ErrNoSpeciesDefined
	}
	e.Species = ontology.AppendDistinct(nil, terms...)
	e.updated("species")
	return nil
}

// SetSpecimens replaces the specimens
func (e *Experiment) SetSpecimens(terms []ontology.Term) error {
	if len(terms) == 0 {
		return ErrNoSpecimenDefined
	}
	e.Specimens = ontology.AppendDistinct(nil, terms...)
	e.updated("specimens")
	return nil
}

// SetAnalytes replaces the analytes
func (e *Experiment) SetAnalytes(terms []ontology.Term) error {
	if len(terms) == 0 {
		return ErrNoAnalyteDefined
	}
	e.Analytes = ontology.AppendDistinct(nil, terms...)
	e.updated("analytes")
	return nil
}

// AddVariable adds an experimental variable to the design
func (e *Experiment) AddVariable(name, unit string, levels []string) error {
	variable, err := NewVariable(name, unit, levels)
	if err != nil {
		return err
	}
	added, err := e.Design.AddVariable(variable)
	if err != nil {
		return err
	}
	if added {
		e.updated("variables")
	}
	return nil
}

// RemoveVariable removes an experimental variable from the design
func (e *Experiment) RemoveVariable(name string) error {
	removed, err := e.Design.RemoveVariable(name)
	if err != nil {
		return err
	}
	if removed {
		e.updated("variables")
	}
	return nil
}

// RemoveAllVariables clears the design's variables
func (e *Experiment) RemoveAllVariables() error {
	if err := e.Design.RemoveAllVariables(); err != nil {
		return err
	}
	e.updated("variables")
	return nil
}

// RenameVariable renames an experimental variable
func (e *Experiment) RenameVariable(oldName, newName string) error {
	renamed, err := e.Design.RenameVariable(oldName, newName)
	if err != nil {
		return err
	}
	if renamed {
		e.updated("variables")
	}
	return nil
}

// SetVariableLevels replaces the levels of an experimental variable
func (e *Experiment) SetVariableLevels(name, unit string, levels []string) error {
	if err := e.Design.SetVariableLevels(name, unit, levels); err != nil {
		return err
	}
	e.updated("variables")
	return nil
}

// AddGroup adds an experimental group
func (e *Experiment) AddGroup(name string, sampleSize int, levels []Level) (Group, error) {
	group, err := e.Design.AddGroup(name, sampleSize, levels)
	if err != nil {
		return Group{}, err
	}
	e.updated("groups")
	return group, nil
}

// UpdateGroup changes an experimental group
func (e *Experiment) UpdateGroup(id uuid.UUID, name string, sampleSize int, levels []Level) (Group, error) {
	group, err := e.Design.UpdateGroup(id, name, sampleSize, levels)
	if err != nil {
		return Group{}, err
	}
	e.updated("groups")
	return group, nil
}

// RemoveGroup removes an experimental group
func (e *Experiment) RemoveGroup(id uuid.UUID) {
	if e.Design.RemoveGroup(id) {
		e.updated("groups")
	}
}

// RemoveGroupsByNumber removes experimental groups by their numbers
func (e *Experiment) RemoveGroupsByNumber(numbers ...int) {
	if e.Design.RemoveGroupsByNumber(numbers...) > 0 {
		e.updated("groups")
	}
}

func (e *Experiment) updated(change string) {
	e.Touch()
	e.IncrementVersion()
	e.AddDomainEvent(NewExperimentUpdatedEvent(e, change))
}
