// Package sample implements sample batch registration, editing and deletion
// together with quality control uploads.
package sample

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	maxBatchUpdateRetries = 10
	maxConflictBackoff    = 500 * time.Millisecond
)

var (
	ErrQueryFailed             = shared.NewDomainError("QUERY_FAILED", "Samples could not be queried")
	ErrBatchUpdateFailed       = shared.NewDomainError("BATCH_UPDATE_FAILED", "Batch could not be updated")
	ErrBatchesNotRetrieved     = shared.NewDomainError("BATCHES_COULD_NOT_BE_RETRIEVED", "Batches could not be retrieved")
	ErrBatchCreationFailed     = shared.NewDomainError("BATCH_CREATION_FAILED", "Batch could not be created")
	ErrBatchRegistrationFailed = shared.NewDomainError("BATCH_REGISTRATION_FAILED", "Samples of the batch could not be registered")
	ErrBatchDeletionFailed     = shared.NewDomainError("BATCH_DELETION_FAILED", "Batch could not be deleted")
	ErrSamplesNotInBatch       = shared.NewDomainError("SAMPLES_DONT_BELONG_TO_BATCH", "Samples do not belong to the batch")
	ErrUnknownBatch            = shared.NewDomainError("UNKNOWN_BATCH", "Unknown batch")
	ErrDataAttached            = shared.NewDomainError("DATA_ATTACHED", "Measurements are attached to the samples")
	ErrUnknownSample           = shared.NewDomainError("UNKNOWN_SAMPLE", "Unknown sample")
	ErrSampleDeletionFailed    = shared.NewDomainError("SAMPLE_DELETION_FAILED", "Samples could not be deleted")
	ErrInvalidSampleMetadata   = shared.NewDomainError("INVALID_SAMPLE_METADATA", "Invalid sample metadata")
	ErrProjectNotFound         = shared.NewDomainError("PROJECT_NOT_FOUND", "Project not found")
	ErrCodeGenerationFailed    = shared.NewDomainError("SAMPLE_CODE_GENERATION_FAILED", "Sample codes could not be generated")
	ErrNoSamples               = shared.NewDomainError("NO_SAMPLES", "No samples provided")
)

// ValidationFailedError carries the failures of a rejected sample sheet
type ValidationFailedError struct {
	Result sample.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return "Invalid sample metadata: " + strings.Join(e.Result.Failures, "; ")
}

// Unwrap exposes ErrInvalidSampleMetadata
func (e *ValidationFailedError) Unwrap() error {
	return ErrInvalidSampleMetadata
}

// MeasurementCounter counts measurements referencing samples
type MeasurementCounter interface {
	CountBySampleIDs(ctx context.Context, sampleIDs []uuid.UUID) (int64, error)
}

// Metrics records sample registrations
type Metrics interface {
	SamplesRegistered(ctx context.Context, projectCode string, count int)
}

// SampleService handles sample and batch business operations
type SampleService struct {
	projects     project.ProjectRepository
	samples      sample.SampleRepository
	batches      sample.BatchRepository
	sequence     sample.CodeSequence
	confounding  experiment.ConfoundingRepository
	measurements MeasurementCounter
	validation   *Validation
	publisher    shared.EventPublisher
	metrics      Metrics
	logger       *zap.Logger
	conflictWait time.Duration
}

// NewSampleService creates a new SampleService. publisher and metrics may be nil.
func NewSampleService(
	projects project.ProjectRepository,
	samples sample.SampleRepository,
	batches sample.BatchRepository,
	sequence sample.CodeSequence,
	confounding experiment.ConfoundingRepository,
	measurements MeasurementCounter,
	validation *Validation,
	publisher shared.EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) *SampleService {
	return &SampleService{
		projects:     projects,
		samples:      samples,
		batches:      batches,
		sequence:     sequence,
		confounding:  confounding,
		measurements: measurements,
		validation:   validation,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
		conflictWait: maxConflictBackoff,
	}
}

// Validate checks sample sheet rows without registering anything
func (s *SampleService) Validate(ctx context.Context, projectID uuid.UUID, rows []SampleMetadata, existing bool) (sample.ValidationResult, error) {
	return s.validation.ValidateAll(ctx, projectID, rows, existing)
}

// RegisterSamples registers a batch with its samples. The batch is stored
// first, then sample codes are reserved, samples and their confounding
// levels stored and finally the samples attached to the batch. A failing
// step deletes the samples and the batch again.
func (s *SampleService) RegisterSamples(ctx context.Context, projectID uuid.UUID, req RegisterBatchRequest) (*RegisteredBatch, error) {
	if len(req.Samples) == 0 {
		return nil, ErrNoSamples
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	regs, err := s.validateNew(ctx, projectID, req.Samples)
	if err != nil {
		return nil, err
	}

	batch, err := sample.NewBatch(projectID, req.Batch.Label, req.Batch.Pilot)
	if err != nil {
		return nil, err
	}
	if err := s.batches.Save(ctx, batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchCreationFailed, err)
	}

	created, err := s.createSamples(ctx, p, batch.ID, req.Samples, regs)
	if err != nil {
		s.deleteBatchQuietly(ctx, batch.ID)
		return nil, err
	}

	registered, err := s.updateBatch(ctx, batch.ID, func(b *sample.Batch) error {
		for _, smp := range created {
			b.AddSample(smp.ID)
		}
		b.Registered(p.Title)
		return nil
	})
	if err != nil {
		s.deleteSamplesQuietly(ctx, created)
		s.deleteBatchQuietly(ctx, batch.ID)
		return nil, fmt.Errorf("%w: %v", ErrBatchRegistrationFailed, err)
	}

	codes := make([]string, 0, len(created))
	for _, smp := range created {
		codes = append(codes, smp.Code.String())
		s.publish(ctx, smp)
	}
	s.publish(ctx, registered)
	if s.metrics != nil {
		s.metrics.SamplesRegistered(ctx, p.Code.String(), len(created))
	}
	s.logger.Info("Sample batch registered",
		zap.String("project_code", p.Code.String()),
		zap.String("batch_id", batch.ID.String()),
		zap.Int("samples", len(created)))
	return &RegisteredBatch{BatchID: batch.ID, Samples: codes}, nil
}

// UpdateSamples changes registered samples of a batch, matched by sample code
func (s *SampleService) UpdateSamples(ctx context.Context, projectID, batchID uuid.UUID, rows []SampleMetadata) error {
	if _, err := s.batchOfProject(ctx, projectID, batchID); err != nil {
		return err
	}
	updated, err := s.prepareUpdates(ctx, projectID, batchID, rows)
	if err != nil {
		return err
	}
	if err := s.storeUpdates(ctx, updated, rows); err != nil {
		return err
	}
	for _, smp := range updated {
		s.publish(ctx, smp)
	}
	return nil
}

// EditBatch renames a batch and registers, edits and deletes its samples in
// one go. Edited and deleted samples must belong to the batch.
func (s *SampleService) EditBatch(ctx context.Context, projectID, batchID uuid.UUID, req EditBatchRequest) error {
	if strings.TrimSpace(req.Label) == "" {
		return shared.NewDomainError("INVALID_BATCH", "Batch label must not be empty")
	}
	if _, err := s.batchOfProject(ctx, projectID, batchID); err != nil {
		return err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return err
	}

	var regs []sample.Registration
	if len(req.Created) > 0 {
		if regs, err = s.validateNew(ctx, projectID, req.Created); err != nil {
			return err
		}
	}
	updated, err := s.prepareUpdates(ctx, projectID, batchID, req.Edited)
	if err != nil {
		return err
	}
	deleted, err := s.samplesOfBatch(ctx, batchID, req.Deleted)
	if err != nil {
		return err
	}
	if err := s.requireNoData(ctx, deleted); err != nil {
		return err
	}

	var created []*sample.Sample
	if len(req.Created) > 0 {
		if created, err = s.createSamples(ctx, p, batchID, req.Created, regs); err != nil {
			return err
		}
	}
	if err := s.storeUpdates(ctx, updated, req.Edited); err != nil {
		s.deleteSamplesQuietly(ctx, created)
		return err
	}

	batch, err := s.updateBatch(ctx, batchID, func(b *sample.Batch) error {
		if err := b.Rename(req.Label); err != nil {
			return err
		}
		b.SetPilot(req.Pilot)
		for _, smp := range created {
			b.AddSample(smp.ID)
		}
		for _, smp := range deleted {
			b.RemoveSample(smp.ID)
		}
		return nil
	})
	if err != nil {
		s.deleteSamplesQuietly(ctx, created)
		return fmt.Errorf("%w: %v", ErrBatchUpdateFailed, err)
	}

	if err := s.removeSamples(ctx, deleted); err != nil {
		return err
	}
	for _, smp := range created {
		s.publish(ctx, smp)
	}
	for _, smp := range updated {
		s.publish(ctx, smp)
	}
	s.publish(ctx, batch)
	s.logger.Info("Sample batch edited",
		zap.String("batch_id", batchID.String()),
		zap.Int("created", len(created)),
		zap.Int("edited", len(updated)),
		zap.Int("deleted", len(deleted)))
	return nil
}

// AddSampleToBatch attaches a sample to a batch. Concurrent batch changes
// are retried after a random pause of at most 500ms.
func (s *SampleService) AddSampleToBatch(ctx context.Context, batchID, sampleID uuid.UUID) error {
	_, err := s.updateBatch(ctx, batchID, func(b *sample.Batch) error {
		b.AddSample(sampleID)
		return nil
	})
	if err != nil && !errors.Is(err, ErrUnknownBatch) {
		return fmt.Errorf("%w: %v", ErrBatchUpdateFailed, err)
	}
	return err
}

// DeleteSamples deletes samples of a project and detaches them from their
// batches. Samples with measurements are kept.
func (s *SampleService) DeleteSamples(ctx context.Context, projectID uuid.UUID, sampleIDs []uuid.UUID) error {
	if len(sampleIDs) == 0 {
		return nil
	}
	found, err := s.samples.FindByIDs(ctx, sampleIDs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if len(found) != len(sampleIDs) {
		return ErrUnknownSample
	}
	targets := make([]*sample.Sample, 0, len(found))
	byBatch := make(map[uuid.UUID][]uuid.UUID)
	for i := range found {
		if found[i].ProjectID != projectID {
			return ErrUnknownSample
		}
		targets = append(targets, &found[i])
		byBatch[found[i].BatchID] = append(byBatch[found[i].BatchID], found[i].ID)
	}
	if err := s.requireNoData(ctx, targets); err != nil {
		return err
	}
	for batchID, ids := range byBatch {
		_, err := s.updateBatch(ctx, batchID, func(b *sample.Batch) error {
			for _, id := range ids {
				b.RemoveSample(id)
			}
			return nil
		})
		if err != nil && !errors.Is(err, ErrUnknownBatch) {
			return fmt.Errorf("%w: %v", ErrBatchUpdateFailed, err)
		}
	}
	return s.removeSamples(ctx, targets)
}

// DeleteBatch deletes a batch with all of its samples. Batches whose samples
// have measurements are kept.
func (s *SampleService) DeleteBatch(ctx context.Context, projectID, batchID uuid.UUID) error {
	batch, err := s.batchOfProject(ctx, projectID, batchID)
	if err != nil {
		return err
	}
	found, err := s.samples.FindByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	targets := make([]*sample.Sample, 0, len(found))
	for i := range found {
		targets = append(targets, &found[i])
	}
	if err := s.requireNoData(ctx, targets); err != nil {
		return err
	}
	if err := s.removeSamples(ctx, targets); err != nil {
		return err
	}
	if err := s.batches.Delete(ctx, batch.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrBatchDeletionFailed, err)
	}
	s.logger.Info("Sample batch deleted",
		zap.String("batch_id", batchID.String()),
		zap.Int("samples", len(targets)))
	return nil
}

// ListSamples lists the samples of a project
func (s *SampleService) ListSamples(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (shared.Paginated[SampleResponse], error) {
	found, err := s.samples.FindByProject(ctx, projectID, filter)
	if err != nil {
		return shared.Paginated[SampleResponse]{}, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	total, err := s.samples.CountByProject(ctx, projectID, filter)
	if err != nil {
		return shared.Paginated[SampleResponse]{}, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	items := make([]SampleResponse, 0, len(found))
	for i := range found {
		items = append(items, ToSampleResponse(&found[i]))
	}
	return shared.NewPaginated(items, total, filter.Offset, filter.Limit), nil
}

// GetSample returns a sample of a project
func (s *SampleService) GetSample(ctx context.Context, projectID, sampleID uuid.UUID) (*SampleResponse, error) {
	smp, err := s.samples.FindByID(ctx, sampleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUnknownSample
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if smp.ProjectID != projectID {
		return nil, ErrUnknownSample
	}
	resp := ToSampleResponse(smp)
	return &resp, nil
}

// ListBatches lists the batches of a project
func (s *SampleService) ListBatches(ctx context.Context, projectID uuid.UUID) ([]BatchResponse, error) {
	batches, err := s.batches.FindByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchesNotRetrieved, err)
	}
	out := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, ToBatchResponse(&batches[i]))
	}
	return out, nil
}

func (s *SampleService) validateNew(ctx context.Context, projectID uuid.UUID, rows []SampleMetadata) ([]sample.Registration, error) {
	regs := make([]sample.Registration, 0, len(rows))
	var combined sample.ValidationResult
	for _, row := range rows {
		result, reg, err := s.validation.ValidateNew(ctx, projectID, row)
		if err != nil {
			return nil, err
		}
		combined = combined.Combine(result)
		regs = append(regs, reg)
	}
	if combined.ContainsFailures() {
		return nil, &ValidationFailedError{Result: combined}
	}
	return regs, nil
}

// prepareUpdates validates edited rows and applies them to the loaded samples
func (s *SampleService) prepareUpdates(ctx context.Context, projectID, batchID uuid.UUID, rows []SampleMetadata) ([]*sample.Sample, error) {
	updated := make([]*sample.Sample, 0, len(rows))
	var combined sample.ValidationResult
	regs := make([]sample.Registration, 0, len(rows))
	for _, row := range rows {
		result, reg, existing, err := s.validation.ValidateExisting(ctx, projectID, row)
		if err != nil {
			return nil, err
		}
		combined = combined.Combine(result)
		if existing != nil {
			updated = append(updated, existing)
			regs = append(regs, reg)
		}
	}
	if combined.ContainsFailures() {
		return nil, &ValidationFailedError{Result: combined}
	}
	for i, smp := range updated {
		if smp.BatchID != batchID {
			return nil, ErrSamplesNotInBatch
		}
		if err := smp.Update(regs[i]); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (s *SampleService) storeUpdates(ctx context.Context, updated []*sample.Sample, rows []SampleMetadata) error {
	if len(updated) == 0 {
		return nil
	}
	if err := s.samples.SaveBatch(ctx, updated); err != nil {
		return fmt.Errorf("%w: %v", ErrBatchUpdateFailed, err)
	}
	if levels := confoundingLevels(updated, rows); len(levels) > 0 {
		if err := s.confounding.UpsertLevels(ctx, levels); err != nil {
			return fmt.Errorf("%w: %v", ErrBatchUpdateFailed, err)
		}
	}
	return nil
}

// createSamples reserves sample codes and stores the samples with their
// confounding levels
func (s *SampleService) createSamples(ctx context.Context, p *project.Project, batchID uuid.UUID, rows []SampleMetadata, regs []sample.Registration) ([]*sample.Sample, error) {
	first, err := s.sequence.Next(ctx, p.ID, len(rows))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodeGenerationFailed, err)
	}
	created := make([]*sample.Sample, 0, len(rows))
	for i := range rows {
		code, err := sample.NewCode(p.Code, first+i)
		if err != nil {
			return nil, err
		}
		smp, err := sample.NewSample(code, p.ID, batchID, regs[i])
		if err != nil {
			return nil, err
		}
		created = append(created, smp)
	}
	if err := s.samples.SaveBatch(ctx, created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchRegistrationFailed, err)
	}
	if levels := confoundingLevels(created, rows); len(levels) > 0 {
		if err := s.confounding.UpsertLevels(ctx, levels); err != nil {
			s.deleteSamplesQuietly(ctx, created)
			return nil, fmt.Errorf("%w: %v", ErrBatchRegistrationFailed, err)
		}
	}
	return created, nil
}

// removeSamples deletes samples with their confounding levels and records
// the deletion events
func (s *SampleService) removeSamples(ctx context.Context, targets []*sample.Sample) error {
	if len(targets) == 0 {
		return nil
	}
	ids := sampleIDs(targets)
	if err := s.confounding.DeleteLevelsBySamples(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", ErrSampleDeletionFailed, err)
	}
	if err := s.samples.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", ErrSampleDeletionFailed, err)
	}
	for _, smp := range targets {
		smp.MarkDeleted()
		s.publish(ctx, smp)
	}
	return nil
}

func (s *SampleService) requireNoData(ctx context.Context, targets []*sample.Sample) error {
	if len(targets) == 0 {
		return nil
	}
	n, err := s.measurements.CountBySampleIDs(ctx, sampleIDs(targets))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if n > 0 {
		return ErrDataAttached
	}
	return nil
}

// samplesOfBatch loads samples by code and checks they belong to the batch
func (s *SampleService) samplesOfBatch(ctx context.Context, batchID uuid.UUID, codes []string) ([]*sample.Sample, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	parsed := make([]sample.Code, 0, len(codes))
	for _, c := range codes {
		code, err := sample.ParseCode(c)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, code)
	}
	found, err := s.samples.FindByCodes(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if len(found) != len(parsed) {
		return nil, ErrUnknownSample
	}
	out := make([]*sample.Sample, 0, len(found))
	for i := range found {
		if found[i].BatchID != batchID {
			return nil, ErrSamplesNotInBatch
		}
		out = append(out, &found[i])
	}
	return out, nil
}

// updateBatch loads a batch, applies fn and stores it. Version conflicts
// reload the batch and apply fn again.
func (s *SampleService) updateBatch(ctx context.Context, batchID uuid.UUID, fn func(b *sample.Batch) error) (*sample.Batch, error) {
	var result *sample.Batch
	op := func() error {
		b, err := s.findBatch(ctx, batchID)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := fn(b); err != nil {
			return backoff.Permanent(err)
		}
		if err := s.batches.Save(ctx, b); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				s.logger.Debug("Batch changed concurrently, retrying", zap.String("batch_id", batchID.String()))
				return err
			}
			return backoff.Permanent(err)
		}
		result = b
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(&randomBackOff{max: s.conflictWait}, maxBatchUpdateRetries),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SampleService) batchOfProject(ctx context.Context, projectID, batchID uuid.UUID) (*sample.Batch, error) {
	b, err := s.findBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b.ProjectID != projectID {
		return nil, ErrUnknownBatch
	}
	return b, nil
}

func (s *SampleService) findBatch(ctx context.Context, batchID uuid.UUID) (*sample.Batch, error) {
	b, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUnknownBatch
		}
		return nil, fmt.Errorf("%w: %v", ErrBatchesNotRetrieved, err)
	}
	return b, nil
}

func (s *SampleService) project(ctx context.Context, projectID uuid.UUID) (*project.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *SampleService) deleteSamplesQuietly(ctx context.Context, targets []*sample.Sample) {
	if len(targets) == 0 {
		return
	}
	ids := sampleIDs(targets)
	if err := s.confounding.DeleteLevelsBySamples(ctx, ids); err != nil {
		s.logger.Error("Rollback of confounding levels failed", zap.Error(err))
	}
	if err := s.samples.DeleteByIDs(ctx, ids); err != nil {
		s.logger.Error("Rollback of samples failed", zap.Error(err))
	}
}

func (s *SampleService) deleteBatchQuietly(ctx context.Context, batchID uuid.UUID) {
	if err := s.batches.Delete(ctx, batchID); err != nil {
		s.logger.Error("Rollback of batch failed", zap.String("batch_id", batchID.String()), zap.Error(err))
	}
}

func (s *SampleService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.publisher, agg); err != nil {
		s.logger.Warn("Failed to publish sample events", zap.Error(err))
	}
}

func confoundingLevels(samples []*sample.Sample, rows []SampleMetadata) []experiment.ConfoundingLevel {
	var levels []experiment.ConfoundingLevel
	for i, smp := range samples {
		for variableID, value := range rows[i].ConfoundingLevels {
			levels = append(levels, experiment.ConfoundingLevel{
				VariableID: variableID,
				SampleID:   smp.ID,
				Value:      strings.TrimSpace(value),
			})
		}
	}
	return levels
}

func sampleIDs(samples []*sample.Sample) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(samples))
	for _, smp := range samples {
		ids = append(ids, smp.ID)
	}
	return ids
}

// randomBackOff waits a random duration up to max between attempts
type randomBackOff struct {
	max time.Duration
}

func (r *randomBackOff) NextBackOff() time.Duration {
	if r.max <= 0 {
		return 0
	}
	return rand.N(r.max)
}

func (r *randomBackOff) Reset() {}
