package measurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// MeasurementRepository defines the interface for measurement persistence
type MeasurementRepository interface {
	// SaveNGS creates or updates genomics measurements in one transaction
	SaveNGS(ctx context.Context, measurements ...*NGSMeasurement) error

	// SavePxP creates or updates proteomics measurements in one transaction
	SavePxP(ctx context.Context, measurements ...*ProteomicsMeasurement) error

	// FindNGS finds a genomics measurement by id
	FindNGS(ctx context.Context, id uuid.UUID) (*NGSMeasurement, error)

	// FindPxP finds a proteomics measurement by id
	FindPxP(ctx context.Context, id uuid.UUID) (*ProteomicsMeasurement, error)

	// FindNGSByCode finds a genomics measurement by code
	FindNGSByCode(ctx context.Context, code Code) (*NGSMeasurement, error)

	// FindPxPByCode finds a proteomics measurement by code
	FindPxPByCode(ctx context.Context, code Code) (*ProteomicsMeasurement, error)

	// FindNGSByProject lists genomics measurements of a project
	FindNGSByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]NGSMeasurement, error)

	// FindPxPByProject lists proteomics measurements of a project
	FindPxPByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]ProteomicsMeasurement, error)

	// ExistsCode reports whether a measurement with the code exists
	ExistsCode(ctx context.Context, code Code) (bool, error)

	// CountBySampleIDs counts measurements referencing any of the samples
	CountBySampleIDs(ctx context.Context, sampleIDs []uuid.UUID) (int64, error)

	// FindByIDs finds measurements of both kinds by their ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Measurement, error)

	// DeleteByIDs deletes measurements of both kinds
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// RawDataLookup reports raw data registered for measurements
type RawDataLookup interface {
	// CountByMeasurementCodes counts raw datasets of the measurements
	CountByMeasurementCodes(ctx context.Context, codes []string) (int64, error)
}
