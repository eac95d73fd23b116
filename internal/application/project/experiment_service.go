package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrExperimentNotFound          = shared.NewDomainError("EXPERIMENT_NOT_FOUND", "Experiment not found")
	ErrUnknownOntologyTerm         = shared.NewDomainError("UNKNOWN_ONTOLOGY_TERM", "Unknown ontology term")
	ErrSamplesAttachedToExperiment = shared.NewDomainError("SAMPLES_STILL_ATTACHED_TO_EXPERIMENT", "Samples are still attached to the experiment")
	ErrUnknownConfoundingVariable  = shared.NewDomainError("UNKNOWN_CONFOUNDING_VARIABLE", "Unknown confounding variable")
)

// TermResolver finds ontology terms from CURIEs or "label [CURIE]" strings.
// A nil term without error means the term is unknown.
type TermResolver interface {
	Resolve(ctx context.Context, value string) (*ontology.Term, error)
}

// SampleCounter counts samples registered for an experiment
type SampleCounter interface {
	CountByExperiment(ctx context.Context, experimentID uuid.UUID) (int64, error)
}

// ExperimentService handles experiment business operations
type ExperimentService struct {
	experiments experiment.ExperimentRepository
	confounding experiment.ConfoundingRepository
	projects    project.ProjectRepository
	samples     SampleCounter
	terms       TermResolver
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewExperimentService creates a new ExperimentService. publisher may be nil.
func NewExperimentService(
	experiments experiment.ExperimentRepository,
	confounding experiment.ConfoundingRepository,
	projects project.ProjectRepository,
	samples SampleCounter,
	terms TermResolver,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ExperimentService {
	return &ExperimentService{
		experiments: experiments,
		confounding: confounding,
		projects:    projects,
		samples:     samples,
		terms:       terms,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create adds an experiment to a project
func (s *ExperimentService) Create(ctx context.Context, projectID uuid.UUID, desc ExperimentDescription) (*ExperimentResponse, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	exp, err := s.newExperiment(ctx, projectID, desc)
	if err != nil {
		return nil, err
	}
	if err := s.experiments.Save(ctx, exp); err != nil {
		return nil, fmt.Errorf("save experiment: %w", err)
	}
	p.AddExperiment(exp.ID)
	if err := s.projects.Save(ctx, p); err != nil {
		if delErr := s.experiments.Delete(ctx, exp.ID); delErr != nil {
			s.logger.Error("Rollback of experiment failed", zap.String("experiment_id", exp.ID.String()), zap.Error(delErr))
		}
		return nil, fmt.Errorf("save project: %w", err)
	}
	s.publish(ctx, exp)
	if err := shared.PublishAndClear(ctx, s.publisher, p); err != nil {
		s.logger.Warn("Failed to publish project events", zap.Error(err))
	}
	resp := ToExperimentResponse(exp)
	return &resp, nil
}

func (s *ExperimentService) newExperiment(ctx context.Context, projectID uuid.UUID, desc ExperimentDescription) (*experiment.Experiment, error) {
	species, err := s.resolveTerms(ctx, desc.Species)
	if err != nil {
		return nil, err
	}
	specimens, err := s.resolveTerms(ctx, desc.Specimens)
	if err != nil {
		return nil, err
	}
	analytes, err := s.resolveTerms(ctx, desc.Analytes)
	if err != nil {
		return nil, err
	}
	return experiment.NewExperiment(projectID, desc.Name, species, specimens, analytes)
}

func (s *ExperimentService) resolveTerms(ctx context.Context, values []string) ([]ontology.Term, error) {
	terms := make([]ontology.Term, 0, len(values))
	for _, v := range values {
		term, err := s.terms.Resolve(ctx, v)
		if err != nil {
			return nil, err
		}
		if term == nil {
			return nil, ErrUnknownOntologyTerm.Withf("Unknown ontology term: %s", v)
		}
		terms = append(terms, *term)
	}
	return terms, nil
}

// List returns the experiments of a project
func (s *ExperimentService) List(ctx context.Context, projectID uuid.UUID) ([]ExperimentResponse, error) {
	experiments, err := s.experiments.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	result := make([]ExperimentResponse, 0, len(experiments))
	for i := range experiments {
		result = append(result, ToExperimentResponse(&experiments[i]))
	}
	return result, nil
}

// Get returns an experiment
func (s *ExperimentService) Get(ctx context.Context, id uuid.UUID) (*ExperimentResponse, error) {
	exp, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToExperimentResponse(exp)
	return &resp, nil
}

// Find returns the experiment aggregate
func (s *ExperimentService) Find(ctx context.Context, id uuid.UUID) (*experiment.Experiment, error) {
	return s.find(ctx, id)
}

// UpdateDescription renames the experiment and replaces its terms. Empty
// term lists are rejected.
func (s *ExperimentService) UpdateDescription(ctx context.Context, id uuid.UUID, desc ExperimentDescription) error {
	species, err := s.resolveTerms(ctx, desc.Species)
	if err != nil {
		return err
	}
	specimens, err := s.resolveTerms(ctx, desc.Specimens)
	if err != nil {
		return err
	}
	analytes, err := s.resolveTerms(ctx, desc.Analytes)
	if err != nil {
		return err
	}
	return s.modify(ctx, id, func(e *experiment.Experiment) error {
		if err := e.Rename(desc.Name); err != nil {
			return err
		}
		if err := e.SetSpecies(species); err != nil {
			return err
		}
		if err := e.SetSpecimens(specimens); err != nil {
			return err
		}
		return e.SetAnalytes(analytes)
	})
}

// AddVariables adds experimental variables
func (s *ExperimentService) AddVariables(ctx context.Context, id uuid.UUID, variables []VariableInput) error {
	return s.modify(ctx, id, func(e *experiment.Experiment) error {
		for _, v := range variables {
			if err := e.AddVariable(v.Name, v.Unit, v.Levels); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateVariable renames a variable and replaces its levels
func (s *ExperimentService) UpdateVariable(ctx context.Context, id uuid.UUID, name string, v VariableInput) error {
	return s.modify(ctx, id, func(e *experiment.Experiment) error {
		if v.Name != "" && v.Name != name {
			if err := e.RenameVariable(name, v.Name); err != nil {
				return err
			}
			name = v.Name
		}
		return e.SetVariableLevels(name, v.Unit, v.Levels)
	})
}

// DeleteVariable removes a variable; rejected while groups exist
func (s *ExperimentService) DeleteVariable(ctx context.Context, id uuid.UUID, name string) error {
	return s.modify(ctx, id, func(e *experiment.Experiment) error {
		return e.RemoveVariable(name)
	})
}

// DeleteAllVariables removes all variables and groups of the experiment.
// Not possible once samples are registered for it.
func (s *ExperimentService) DeleteAllVariables(ctx context.Context, id uuid.UUID) error {
	count, err := s.samples.CountByExperiment(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSamplesAttachedToExperiment
	}
	return s.modify(ctx, id, func(e *experiment.Experiment) error {
		numbers := make([]int, 0, len(e.Design.Groups))
		for _, g := range e.Design.Groups {
			numbers = append(numbers, g.GroupNumber)
		}
		e.RemoveGroupsByNumber(numbers...)
		return e.RemoveAllVariables()
	})
}

// AddGroup adds an experimental group
func (s *ExperimentService) AddGroup(ctx context.Context, id uuid.UUID, input GroupInput) (*experiment.Group, error) {
	var group experiment.Group
	err := s.modify(ctx, id, func(e *experiment.Experiment) error {
		var err error
		group, err = e.AddGroup(input.Name, input.SampleSize, input.levels())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup changes an experimental group
func (s *ExperimentService) UpdateGroup(ctx context.Context, id, groupID uuid.UUID, input GroupInput) (*experiment.Group, error) {
	var group experiment.Group
	err := s.modify(ctx, id, func(e *experiment.Experiment) error {
		var err error
		group, err = e.UpdateGroup(groupID, input.Name, input.SampleSize, input.levels())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup removes an experimental group
func (s *ExperimentService) DeleteGroup(ctx context.Context, id, groupID uuid.UUID) error {
	return s.modify(ctx, id, func(e *experiment.Experiment) error {
		e.RemoveGroup(groupID)
		return nil
	})
}

// CreateConfoundingVariable adds a confounding variable to the experiment
func (s *ExperimentService) CreateConfoundingVariable(ctx context.Context, experimentID uuid.UUID, name string) (*experiment.ConfoundingVariable, error) {
	if _, err := s.find(ctx, experimentID); err != nil {
		return nil, err
	}
	variable, err := experiment.NewConfoundingVariable(experimentID, name)
	if err != nil {
		return nil, err
	}
	if err := s.confounding.SaveVariable(ctx, variable); err != nil {
		return nil, err
	}
	return variable, nil
}

// ListConfoundingVariables lists the confounding variables of the experiment
func (s *ExperimentService) ListConfoundingVariables(ctx context.Context, experimentID uuid.UUID) ([]experiment.ConfoundingVariable, error) {
	return s.confounding.FindVariablesByExperiment(ctx, experimentID)
}

// RenameConfoundingVariable renames a confounding variable of the experiment
func (s *ExperimentService) RenameConfoundingVariable(ctx context.Context, experimentID, variableID uuid.UUID, name string) error {
	variable, err := s.confoundingVariable(ctx, experimentID, variableID)
	if err != nil {
		return err
	}
	if err := variable.Rename(name); err != nil {
		return err
	}
	return s.confounding.SaveVariable(ctx, variable)
}

// DeleteConfoundingVariable deletes a variable and all its levels
func (s *ExperimentService) DeleteConfoundingVariable(ctx context.Context, experimentID, variableID uuid.UUID) error {
	if _, err := s.confoundingVariable(ctx, experimentID, variableID); err != nil {
		return err
	}
	return s.confounding.DeleteVariable(ctx, variableID)
}

// SetConfoundingLevels records per-sample values. Every referenced
// variable must belong to the experiment.
func (s *ExperimentService) SetConfoundingLevels(ctx context.Context, experimentID uuid.UUID, levels []experiment.ConfoundingLevel) error {
	if len(levels) == 0 {
		return nil
	}
	variables, err := s.confounding.FindVariablesByExperiment(ctx, experimentID)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(variables))
	for _, v := range variables {
		known[v.ID] = true
	}
	for _, l := range levels {
		if !known[l.VariableID] {
			return ErrUnknownConfoundingVariable.Withf("Unknown confounding variable: %s", l.VariableID.String())
		}
	}
	return s.confounding.UpsertLevels(ctx, levels)
}

// ListConfoundingLevels lists the recorded values for the samples
func (s *ExperimentService) ListConfoundingLevels(ctx context.Context, sampleIDs []uuid.UUID) ([]experiment.ConfoundingLevel, error) {
	if len(sampleIDs) == 0 {
		return []experiment.ConfoundingLevel{}, nil
	}
	return s.confounding.FindLevelsBySamples(ctx, sampleIDs)
}

func (s *ExperimentService) confoundingVariable(ctx context.Context, experimentID, variableID uuid.UUID) (*experiment.ConfoundingVariable, error) {
	variable, err := s.confounding.FindVariable(ctx, variableID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUnknownConfoundingVariable
		}
		return nil, err
	}
	if variable.ExperimentID != experimentID {
		return nil, ErrUnknownConfoundingVariable
	}
	return variable, nil
}

func (s *ExperimentService) modify(ctx context.Context, id uuid.UUID, fn func(e *experiment.Experiment) error) error {
	exp, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(exp); err != nil {
		return err
	}
	if !exp.IsDirty() {
		return nil
	}
	if err := s.experiments.Save(ctx, exp); err != nil {
		return err
	}
	s.publish(ctx, exp)
	return nil
}

func (s *ExperimentService) publish(ctx context.Context, exp *experiment.Experiment) {
	if err := shared.PublishAndClear(ctx, s.publisher, exp); err != nil {
		s.logger.Warn("Failed to publish experiment events", zap.Error(err))
	}
}

func (s *ExperimentService) find(ctx context.Context, id uuid.UUID) (*experiment.Experiment, error) {
	exp, err := s.experiments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrExperimentNotFound
		}
		return nil, err
	}
	return exp, nil
}
