package sample

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleService_RegisterSamples(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	row := f.row("leaf 1")
	row.ConfoundingLevels = map[uuid.UUID]string{f.confounder.ID: " 12 "}
	res, err := f.service.RegisterSamples(ctx, f.project.ID, RegisterBatchRequest{
		Batch:   BatchInput{Label: "first batch", Pilot: true},
		Samples: []SampleMetadata{row, f.row("leaf 2")},
	})
	require.NoError(t, err)
	require.Len(t, res.Samples, 2)

	first, err := sample.NewCode(f.project.Code, 1)
	require.NoError(t, err)
	assert.Equal(t, first.String(), res.Samples[0])

	batch := f.batches.byID[res.BatchID]
	require.NotNil(t, batch)
	assert.Equal(t, "first batch", batch.Label)
	assert.True(t, batch.Pilot)
	assert.Len(t, batch.SampleIDs, 2)

	stored := f.sampleByCode(t, res.Samples[0])
	assert.Equal(t, f.group.ID, stored.ExperimentalGroupID)
	assert.Equal(t, human, stored.Origin.Species)
	assert.Equal(t, "RNA-SEQ", stored.AnalysisMethod.Abbreviation)
	assert.Equal(t, res.BatchID, stored.BatchID)

	require.Len(t, f.confounding.levels, 1)
	assert.Equal(t, "12", f.confounding.levels[0].Value)
	assert.Equal(t, stored.ID, f.confounding.levels[0].SampleID)

	assert.Equal(t, 2, f.publisher.count(sample.EventTypeSampleRegistered))
	assert.Equal(t, 1, f.publisher.count(sample.EventTypeBatchRegistered))
	assert.Equal(t, 2, f.metrics.samples)
}

func TestSampleService_RegisterSamples_CodesContinue(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a", "b")
	res := f.register(t, "c")

	third, err := sample.NewCode(f.project.Code, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{third.String()}, res.Samples)
}

func TestSampleService_RegisterSamples_ValidationFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := f.row("x")
	bad.Condition = "genotype: unknown"
	bad.Species = "Homo sapiens"
	bad.Specimen = "liver [BTO:9999999]"
	bad.AnalysisMethod = "telepathy"

	_, err := f.service.RegisterSamples(ctx, f.project.ID, RegisterBatchRequest{
		Batch:   BatchInput{Label: "b"},
		Samples: []SampleMetadata{f.row("ok"), bad},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSampleMetadata))

	var vErr *ValidationFailedError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 2, vErr.Result.ValidatedCount)
	assert.ElementsMatch(t, []string{
		"Unknown condition: genotype: unknown",
		"Unknown analysis: telepathy",
		"Missing CURIE in species: Homo sapiens",
		"Unknown specimen: BTO:9999999",
	}, vErr.Result.Failures)

	assert.Empty(t, f.batches.byID)
	assert.Empty(t, f.samples.byID)
}

func TestSampleService_RegisterSamples_UnknownExperiment(t *testing.T) {
	f := newFixture(t)
	row := f.row("x")
	row.ExperimentID = uuid.New()

	result, err := f.service.Validate(context.Background(), f.project.ID, []SampleMetadata{row}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown experiment."}, result.Failures)
}

func TestSampleService_RegisterSamples_RollsBack(t *testing.T) {
	t.Run("sample storage fails", func(t *testing.T) {
		f := newFixture(t)
		f.samples.saveErr = errors.New("disk full")

		_, err := f.service.RegisterSamples(context.Background(), f.project.ID, RegisterBatchRequest{
			Batch: BatchInput{Label: "b"}, Samples: []SampleMetadata{f.row("a")},
		})
		assert.ErrorIs(t, err, ErrBatchRegistrationFailed)
		assert.Empty(t, f.batches.byID)
	})

	t.Run("confounding levels fail", func(t *testing.T) {
		f := newFixture(t)
		f.confounding.upsertErr = errors.New("boom")
		row := f.row("a")
		row.ConfoundingLevels = map[uuid.UUID]string{f.confounder.ID: "1"}

		_, err := f.service.RegisterSamples(context.Background(), f.project.ID, RegisterBatchRequest{
			Batch: BatchInput{Label: "b"}, Samples: []SampleMetadata{row},
		})
		assert.ErrorIs(t, err, ErrBatchRegistrationFailed)
		assert.Empty(t, f.batches.byID)
		assert.Empty(t, f.samples.byID)
	})

	t.Run("attaching samples fails", func(t *testing.T) {
		f := newFixture(t)
		f.batches.saveErr = errors.New("lost connection")

		_, err := f.service.RegisterSamples(context.Background(), f.project.ID, RegisterBatchRequest{
			Batch: BatchInput{Label: "b"}, Samples: []SampleMetadata{f.row("a")},
		})
		assert.ErrorIs(t, err, ErrBatchRegistrationFailed)
		assert.Empty(t, f.batches.byID)
		assert.Empty(t, f.samples.byID)
		assert.Zero(t, f.metrics.samples)
	})

	t.Run("code sequence fails", func(t *testing.T) {
		f := newFixture(t)
		f.sequence.err = errors.New("no sequence")

		_, err := f.service.RegisterSamples(context.Background(), f.project.ID, RegisterBatchRequest{
			Batch: BatchInput{Label: "b"}, Samples: []SampleMetadata{f.row("a")},
		})
		assert.ErrorIs(t, err, ErrCodeGenerationFailed)
		assert.Empty(t, f.batches.byID)
	})
}

func TestSampleService_RegisterSamples_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RegisterSamples(ctx, f.project.ID, RegisterBatchRequest{Batch: BatchInput{Label: "b"}})
	assert.ErrorIs(t, err, ErrNoSamples)

	_, err = f.service.RegisterSamples(ctx, uuid.New(), RegisterBatchRequest{
		Batch: BatchInput{Label: "b"}, Samples: []SampleMetadata{f.row("a")},
	})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSampleService_AddSampleToBatch_RetriesConflicts(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "a")
	id := uuid.New()

	f.batches.conflicts = 3
	require.NoError(t, f.service.AddSampleToBatch(context.Background(), res.BatchID, id))
	assert.True(t, f.batches.byID[res.BatchID].Contains(id))
	assert.Zero(t, f.batches.conflicts)
}

func TestSampleService_AddSampleToBatch_GivesUp(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "a")

	f.batches.conflicts = maxBatchUpdateRetries + 5
	err := f.service.AddSampleToBatch(context.Background(), res.BatchID, uuid.New())
	assert.ErrorIs(t, err, ErrBatchUpdateFailed)

	err = f.service.AddSampleToBatch(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrUnknownBatch)
}

func TestSampleService_UpdateSamples(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.register(t, "a")

	row := f.row("renamed")
	row.SampleCode = res.Samples[0]
	row.Comment = "re-measured"
	row.ConfoundingLevels = map[uuid.UUID]string{f.confounder.ID: "30"}
	require.NoError(t, f.service.UpdateSamples(ctx, f.project.ID, res.BatchID, []SampleMetadata{row}))

	stored := f.sampleByCode(t, res.Samples[0])
	assert.Equal(t, "renamed", stored.Label)
	assert.Equal(t, "re-measured", stored.Comment)
	assert.Equal(t, 1, f.publisher.count(sample.EventTypeSampleUpdated))
	require.Len(t, f.confounding.levels, 1)
	assert.Equal(t, "30", f.confounding.levels[0].Value)
}

func TestSampleService_UpdateSamples_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "a")
	second := f.register(t, "b")

	missing := f.row("x")
	err := f.service.UpdateSamples(ctx, f.project.ID, first.BatchID, []SampleMetadata{missing})
	var vErr *ValidationFailedError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{"Missing sample id."}, vErr.Result.Failures)

	unknown := f.row("x")
	unknown.SampleCode = "Q2TEST999ZZ"
	err = f.service.UpdateSamples(ctx, f.project.ID, first.BatchID, []SampleMetadata{unknown})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{"Unknown sample id: Q2TEST999ZZ"}, vErr.Result.Failures)

	foreign := f.row("x")
	foreign.SampleCode = second.Samples[0]
	err = f.service.UpdateSamples(ctx, f.project.ID, first.BatchID, []SampleMetadata{foreign})
	assert.ErrorIs(t, err, ErrSamplesNotInBatch)

	err = f.service.UpdateSamples(ctx, f.project.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrUnknownBatch)
}

func TestSampleService_EditBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.register(t, "a", "b")

	edited := f.row("a edited")
	edited.SampleCode = res.Samples[0]
	err := f.service.EditBatch(ctx, f.project.ID, res.BatchID, EditBatchRequest{
		Label:   "renamed batch",
		Pilot:   true,
		Created: []SampleMetadata{f.row("c")},
		Edited:  []SampleMetadata{edited},
		Deleted: []string{res.Samples[1]},
	})
	require.NoError(t, err)

	batch := f.batches.byID[res.BatchID]
	assert.Equal(t, "renamed batch", batch.Label)
	assert.True(t, batch.Pilot)
	require.Len(t, batch.SampleIDs, 2)

	assert.Len(t, f.samples.byID, 2)
	assert.Equal(t, "a edited", f.sampleByCode(t, res.Samples[0]).Label)
	third, err := sample.NewCode(f.project.Code, 3)
	require.NoError(t, err)
	assert.Equal(t, "c", f.sampleByCode(t, third.String()).Label)
	assert.Equal(t, 1, f.publisher.count(sample.EventTypeSampleDeleted))
}

func TestSampleService_EditBatch_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "a")
	second := f.register(t, "b")

	err := f.service.EditBatch(ctx, f.project.ID, first.BatchID, EditBatchRequest{
		Label: "x", Deleted: []string{second.Samples[0]},
	})
	assert.ErrorIs(t, err, ErrSamplesNotInBatch)

	err = f.service.EditBatch(ctx, f.project.ID, uuid.New(), EditBatchRequest{Label: "x"})
	assert.ErrorIs(t, err, ErrUnknownBatch)

	err = f.service.EditBatch(ctx, uuid.New(), first.BatchID, EditBatchRequest{Label: "x"})
	assert.ErrorIs(t, err, ErrUnknownBatch)

	stored := f.sampleByCode(t, first.Samples[0])
	f.measurements.withData[stored.ID] = true
	err = f.service.EditBatch(ctx, f.project.ID, first.BatchID, EditBatchRequest{
		Label: "x", Deleted: []string{first.Samples[0]},
	})
	assert.ErrorIs(t, err, ErrDataAttached)
	assert.Len(t, f.samples.byID, 2)
}

func TestSampleService_DeleteSamples(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.register(t, "a", "b")
	a := f.sampleByCode(t, res.Samples[0])
	b := f.sampleByCode(t, res.Samples[1])
	require.NoError(t, f.confounding.UpsertLevels(ctx, confoundingLevels(
		[]*sample.Sample{a}, []SampleMetadata{{ConfoundingLevels: map[uuid.UUID]string{f.confounder.ID: "1"}}})))

	f.measurements.withData[b.ID] = true
	err := f.service.DeleteSamples(ctx, f.project.ID, []uuid.UUID{a.ID, b.ID})
	assert.ErrorIs(t, err, ErrDataAttached)
	assert.Len(t, f.samples.byID, 2)

	require.NoError(t, f.service.DeleteSamples(ctx, f.project.ID, []uuid.UUID{a.ID}))
	assert.Len(t, f.samples.byID, 1)
	assert.False(t, f.batches.byID[res.BatchID].Contains(a.ID))
	assert.Empty(t, f.confounding.levels)

	err = f.service.DeleteSamples(ctx, uuid.New(), []uuid.UUID{b.ID})
	assert.ErrorIs(t, err, ErrUnknownSample)
}

func TestSampleService_DeleteBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.register(t, "a", "b")

	stored := f.sampleByCode(t, res.Samples[0])
	f.measurements.withData[stored.ID] = true
	assert.ErrorIs(t, f.service.DeleteBatch(ctx, f.project.ID, res.BatchID), ErrDataAttached)

	delete(f.measurements.withData, stored.ID)
	require.NoError(t, f.service.DeleteBatch(ctx, f.project.ID, res.BatchID))
	assert.Empty(t, f.batches.byID)
	assert.Empty(t, f.samples.byID)

	assert.ErrorIs(t, f.service.DeleteBatch(ctx, f.project.ID, res.BatchID), ErrUnknownBatch)
}

func TestSampleService_Queries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.register(t, "a", "b")

	page, err := f.service.ListSamples(ctx, f.project.ID, shared.Filter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)

	batches, err := f.service.ListBatches(ctx, f.project.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, res.BatchID, batches[0].ID)

	stored := f.sampleByCode(t, res.Samples[0])
	got, err := f.service.GetSample(ctx, f.project.ID, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Samples[0], got.Code)

	_, err = f.service.GetSample(ctx, uuid.New(), stored.ID)
	assert.ErrorIs(t, err, ErrUnknownSample)
}
