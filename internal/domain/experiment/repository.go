package experiment

import (
	"context"

	"github.com/google/uuid"
)

// ExperimentRepository defines the interface for experiment persistence
type ExperimentRepository interface {
	// FindByID finds an experiment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Experiment, error)

	// FindByProject finds all experiments of a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]Experiment, error)

	// Save creates or updates an experiment
	Save(ctx context.Context, experiment *Experiment) error

	// Delete deletes an experiment
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConfoundingRepository persists confounding variables and their per-sample levels
type ConfoundingRepository interface {
	// SaveVariable creates or updates a confounding variable
	SaveVariable(ctx context.Context, variable *ConfoundingVariable) error

	// FindVariable finds a confounding variable by id
	FindVariable(ctx context.Context, id uuid.UUID) (*ConfoundingVariable, error)

	// FindVariablesByExperiment lists the confounding variables of an experiment
	FindVariablesByExperiment(ctx context.Context, experimentID uuid.UUID) ([]ConfoundingVariable, error)

	// DeleteVariable deletes a variable together with its levels
	DeleteVariable(ctx context.Context, id uuid.UUID) error

	// UpsertLevels creates or replaces the given levels
	UpsertLevels(ctx context.Context, levels []ConfoundingLevel) error

	// FindLevelsBySamples lists all levels recorded for the samples
	FindLevelsBySamples(ctx context.Context, sampleIDs []uuid.UUID) ([]ConfoundingLevel, error)

	// DeleteLevelsBySamples removes all levels of the samples
	DeleteLevelsBySamples(ctx context.Context, sampleIDs []uuid.UUID) error
}
