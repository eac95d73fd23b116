package project

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createExperiment(t *testing.T, f *fixture) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	p, err := f.projectSvc.Create(ctx, uuid.New(), validCreateRequest())
	require.NoError(t, err)
	exp, err := f.experiment.Create(ctx, p.ID, ExperimentDescription{
		Name:      "Time series",
		Species:   []string{"NCBITaxon:9606"},
		Specimens: []string{"BTO:0000089"},
		Analytes:  []string{"CHEBI:33697"},
	})
	require.NoError(t, err)
	return p.ID, exp.ID
}

func TestExperimentService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	projectID, expID := createExperiment(t, f)

	got, err := f.experiment.Get(ctx, expID)
	require.NoError(t, err)
	assert.Equal(t, "Time series", got.Name)
	assert.Equal(t, human.ClassIRI, got.Species[0].ClassIRI)

	stored, err := f.projectSvc.Get(ctx, projectID)
	require.NoError(t, err)
	assert.Contains(t, stored.ExperimentIDs, expID)

	list, err := f.experiment.List(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.experiment.Create(ctx, uuid.New(), ExperimentDescription{})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestExperimentService_Description(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, expID := createExperiment(t, f)

	err := f.experiment.UpdateDescription(ctx, expID, ExperimentDescription{
		Name:      "Renamed",
		Species:   []string{"NCBITaxon:9606"},
		Specimens: []string{},
		Analytes:  []string{"CHEBI:33697"},
	})
	assert.Equal(t, experiment.ErrNoSpecimenDefined.Code, shared.ErrorCode(err))

	require.NoError(t, f.experiment.UpdateDescription(ctx, expID, ExperimentDescription{
		Name:      "Renamed",
		Species:   []string{"NCBITaxon:9606"},
		Specimens: []string{"BTO:0000089"},
		Analytes:  []string{"CHEBI:33697"},
	}))
	got, _ := f.experiment.Get(ctx, expID)
	assert.Equal(t, "Renamed", got.Name)
}

func TestExperimentService_Design(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, expID := createExperiment(t, f)

	require.NoError(t, f.experiment.AddVariables(ctx, expID, []VariableInput{
		{Name: "time", Unit: "h", Levels: []string{"0", "24"}},
		{Name: "treatment", Levels: []string{"control", "drug"}},
	}))

	group, err := f.experiment.AddGroup(ctx, expID, GroupInput{
		Name:       "baseline",
		SampleSize: 3,
		Levels: []LevelInput{
			{Variable: "time", Value: "0", Unit: "h"},
			{Variable: "treatment", Value: "control"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, group.GroupNumber)

	t.Run("groups block variable deletion", func(t *testing.T) {
		err := f.experiment.DeleteVariable(ctx, expID, "time")
		assert.Equal(t, experiment.ErrGroupPreventsVariableDeletion.Code, shared.ErrorCode(err))
	})

	t.Run("registered samples block deleting all variables", func(t *testing.T) {
		f.samples.counts[expID] = 2
		err := f.experiment.DeleteAllVariables(ctx, expID)
		assert.ErrorIs(t, err, ErrSamplesAttachedToExperiment)
		f.samples.counts[expID] = 0
	})

	t.Run("deleting all variables clears groups", func(t *testing.T) {
		require.NoError(t, f.experiment.DeleteAllVariables(ctx, expID))
		got, _ := f.experiment.Get(ctx, expID)
		assert.Empty(t, got.Variables)
		assert.Empty(t, got.Groups)
	})
}

func TestExperimentService_Confounding(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, expID := createExperiment(t, f)

	variable, err := f.experiment.CreateConfoundingVariable(ctx, expID, "age")
	require.NoError(t, err)
	sampleID := uuid.New()

	require.NoError(t, f.experiment.SetConfoundingLevels(ctx, expID, []experiment.ConfoundingLevel{
		{VariableID: variable.ID, SampleID: sampleID, Value: "42"},
	}))
	err = f.experiment.SetConfoundingLevels(ctx, expID, []experiment.ConfoundingLevel{
		{VariableID: uuid.New(), SampleID: sampleID, Value: "x"},
	})
	assert.Equal(t, ErrUnknownConfoundingVariable.Code, shared.ErrorCode(err))

	levels, err := f.experiment.ListConfoundingLevels(ctx, []uuid.UUID{sampleID})
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "42", levels[0].Value)

	require.NoError(t, f.experiment.RenameConfoundingVariable(ctx, expID, variable.ID, "age at sampling"))
	err = f.experiment.RenameConfoundingVariable(ctx, uuid.New(), variable.ID, "other")
	assert.ErrorIs(t, err, ErrUnknownConfoundingVariable)

	require.NoError(t, f.experiment.DeleteConfoundingVariable(ctx, expID, variable.ID))
	levels, _ = f.experiment.ListConfoundingLevels(ctx, []uuid.UUID{sampleID})
	assert.Empty(t, levels)
}
