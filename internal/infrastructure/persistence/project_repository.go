package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProjectRepository implements ProjectRepository and OverviewLookup using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a project by its code
func (r *GormProjectRepository) FindByCode(ctx context.Context, code project.Code) (*project.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code.String()).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByCode checks if a project with the given code exists
func (r *GormProjectRepository) ExistsByCode(ctx context.Context, code project.Code) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("code = ?", code.String()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	return saveVersioned(r.db.WithContext(ctx), models.ProjectModelFromDomain(p), p)
}

// Delete deletes a project
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// overviewRow is the scan target of the overview query
type overviewRow struct {
	ID                    uuid.UUID
	Code                  string
	Title                 string
	PrincipalInvestigator string
	ProjectManager        string
	ResponsiblePerson     string
	LastModified          time.Time
	SampleCount           int64
	NGSMeasurementCount   int64 `gorm:"column:ngs_measurement_count"`
	PxPMeasurementCount   int64 `gorm:"column:pxp_measurement_count"`
}

func (r *GormProjectRepository) overviewQuery(ctx context.Context, projectIDs []uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Table("projects AS p")
	if projectIDs != nil {
		query = query.Where("p.id IN ?", projectIDs)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			`LOWER(p.code) LIKE ? ESCAPE '\' OR LOWER(p.title) LIKE ? ESCAPE '\' OR `+
				`LOWER(p.investigator_full_name) LIKE ? ESCAPE '\' OR LOWER(p.manager_full_name) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	}
	return query
}

// Query returns the overviews of projects matching the filter
func (r *GormProjectRepository) Query(ctx context.Context, projectIDs []uuid.UUID, filter shared.Filter) ([]project.Overview, error) {
	if projectIDs != nil && len(projectIDs) == 0 {
		return []project.Overview{}, nil
	}
	var rows []overviewRow
	query := r.overviewQuery(ctx, projectIDs, filter).Select(`p.id, p.code, p.title,
		p.investigator_full_name AS principal_investigator,
		p.manager_full_name AS project_manager,
		p.responsible_full_name AS responsible_person,
		p.last_modified,
		(SELECT COUNT(*) FROM samples s WHERE s.project_id = p.id) AS sample_count,
		(SELECT COUNT(*) FROM ngs_measurements n WHERE n.project_id = p.id) AS ngs_measurement_count,
		(SELECT COUNT(*) FROM pxp_measurements x WHERE x.project_id = p.id) AS pxp_measurement_count`)
	if err := applyPaging(query, filter, projectSorting, "p").Scan(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	collaborators, err := r.collaborators(ctx, ids)
	if err != nil {
		return nil, err
	}

	overviews := make([]project.Overview, 0, len(rows))
	for _, row := range rows {
		overviews = append(overviews, project.Overview{
			ProjectID:             row.ID,
			Code:                  row.Code,
			Title:                 row.Title,
			PrincipalInvestigator: row.PrincipalInvestigator,
			ProjectManager:        row.ProjectManager,
			ResponsiblePerson:     row.ResponsiblePerson,
			LastModified:          row.LastModified,
			SampleCount:           row.SampleCount,
			NGSMeasurementCount:   row.NGSMeasurementCount,
			PxPMeasurementCount:   row.PxPMeasurementCount,
			Collaborators:         collaborators[row.ID],
		})
	}
	return overviews, nil
}

// Count counts the overviews of projects matching the filter
func (r *GormProjectRepository) Count(ctx context.Context, projectIDs []uuid.UUID, filter shared.Filter) (int64, error) {
	if projectIDs != nil && len(projectIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.overviewQuery(ctx, projectIDs, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// collaborators returns the user names with any access entry per project
func (r *GormProjectRepository) collaborators(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string, len(projectIDs))
	if len(projectIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		ProjectID uuid.UUID
		UserName  string
	}
	if err := r.db.WithContext(ctx).
		Table("acl_entries AS a").
		Select("DISTINCT a.project_id, u.user_name").
		Joins("JOIN users u ON CAST(u.id AS TEXT) = a.sid").
		Where("a.principal = ? AND a.project_id IN ?", true, projectIDs).
		Order("u.user_name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ProjectID] = append(result[row.ProjectID], row.UserName)
	}
	return result, nil
}
