package sample

import (
	"context"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// SampleRepository defines the interface for sample persistence
type SampleRepository interface {
	// FindByID finds a sample by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Sample, error)

	// FindByIDs finds samples by their IDs, unknown ids are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Sample, error)

	// FindByCodes finds samples by their codes, unknown codes are skipped
	FindByCodes(ctx context.Context, codes []Code) ([]Sample, error)

	// FindByProject lists samples of a project with filtering and pagination
	FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]Sample, error)

	// FindByExperiment lists all samples of an experiment
	FindByExperiment(ctx context.Context, experimentID uuid.UUID) ([]Sample, error)

	// FindByBatch lists all samples of a batch
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]Sample, error)

	// CountByProject counts samples of a project matching the filter
	CountByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByExperiment counts samples attached to an experiment
	CountByExperiment(ctx context.Context, experimentID uuid.UUID) (int64, error)

	// SaveBatch creates or updates samples in one transaction
	SaveBatch(ctx context.Context, samples []*Sample) error

	// DeleteByIDs deletes samples
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// BatchRepository defines the interface for batch persistence
type BatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByProject lists the batches of a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]Batch, error)

	// Save creates or updates a batch; stale versions fail with ErrConcurrencyConflict
	Save(ctx context.Context, batch *Batch) error

	// Delete deletes a batch
	Delete(ctx context.Context, id uuid.UUID) error
}

// CodeSequence hands out running sample numbers per project
type CodeSequence interface {
	// Next reserves count numbers for the project and returns the first one
	Next(ctx context.Context, projectID uuid.UUID, count int) (int, error)
}

// QualityControlRepository persists quality control metadata
type QualityControlRepository interface {
	// Save stores a quality control record
	Save(ctx context.Context, qc *QualityControl) error

	// FindByID finds a record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*QualityControl, error)

	// FindByProject lists the records of a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]QualityControl, error)

	// Delete removes a record
	Delete(ctx context.Context, id uuid.UUID) error
}
