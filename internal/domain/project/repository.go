package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	// FindByID finds a project by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindByCode finds a project by its code
	FindByCode(ctx context.Context, code Code) (*Project, error)

	// ExistsByCode checks if a project with the given code exists
	ExistsByCode(ctx context.Context, code Code) (bool, error)

	// Save creates or updates a project; stale versions fail with ErrConcurrencyConflict
	Save(ctx context.Context, project *Project) error

	// Delete deletes a project
	Delete(ctx context.Context, id uuid.UUID) error
}

// Overview is the read model listed on the project overview
type Overview struct {
	ProjectID             uuid.UUID `json:"project_id"`
	Code                  string    `json:"code"`
	Title                 string    `json:"title"`
	PrincipalInvestigator string    `json:"principal_investigator"`
	ProjectManager        string    `json:"project_manager"`
	ResponsiblePerson     string    `json:"responsible_person,omitempty"`
	LastModified          time.Time `json:"last_modified"`
	SampleCount           int64     `json:"sample_count"`
	NGSMeasurementCount   int64     `json:"ngs_measurement_count"`
	PxPMeasurementCount   int64     `json:"pxp_measurement_count"`
	Collaborators         []string  `json:"collaborators,omitempty"`
}

// OverviewLookup queries project overviews restricted to a set of projects.
// A nil projectIDs slice means no restriction; an empty one matches nothing.
type OverviewLookup interface {
	// Query returns overviews of the given projects matching the filter's search term
	Query(ctx context.Context, projectIDs []uuid.UUID, filter shared.Filter) ([]Overview, error)

	// Count counts overviews of the given projects matching the filter's search term
	Count(ctx context.Context, projectIDs []uuid.UUID, filter shared.Filter) (int64, error)
}
