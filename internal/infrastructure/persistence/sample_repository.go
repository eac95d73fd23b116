package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSampleRepository implements SampleRepository using GORM
type GormSampleRepository struct {
	db *gorm.DB
}

// NewGormSampleRepository creates a new GormSampleRepository
func NewGormSampleRepository(db *gorm.DB) *GormSampleRepository {
	return &GormSampleRepository{db: db}
}

// FindByID finds a sample by its ID
func (r *GormSampleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sample.Sample, error) {
	var model models.SampleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds samples by their IDs
func (r *GormSampleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]sample.Sample, error) {
	if len(ids) == 0 {
		return []sample.Sample{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", ids).Order("code ASC"))
}

// FindByCodes finds samples by their codes
func (r *GormSampleRepository) FindByCodes(ctx context.Context, codes []sample.Code) ([]sample.Sample, error) {
	if len(codes) == 0 {
		return []sample.Sample{}, nil
	}
	values := make([]string, len(codes))
	for i, c := range codes {
		values[i] = c.String()
	}
	return r.find(r.db.WithContext(ctx).Where("code IN ?", values).Order("code ASC"))
}

func (r *GormSampleRepository) projectQuery(ctx context.Context, projectID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.SampleModel{}).Where("project_id = ?", projectID)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			`LOWER(code) LIKE ? ESCAPE '\' OR LOWER(label) LIKE ? ESCAPE '\' OR LOWER(biological_replicate) LIKE ? ESCAPE '\' OR LOWER(comment) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	}
	if experimentID, ok := filter.Filters["experiment_id"]; ok {
		query = query.Where("experiment_id = ?", experimentID)
	}
	if batchID, ok := filter.Filters["batch_id"]; ok {
		query = query.Where("batch_id = ?", batchID)
	}
	return query
}

// FindByProject lists samples of a project with filtering and pagination
func (r *GormSampleRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]sample.Sample, error) {
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}
	return r.find(applyPaging(r.projectQuery(ctx, projectID, filter), filter, sampleSorting, ""))
}

// FindByExperiment lists all samples of an experiment
func (r *GormSampleRepository) FindByExperiment(ctx context.Context, experimentID uuid.UUID) ([]sample.Sample, error) {
	return r.find(r.db.WithContext(ctx).Where("experiment_id = ?", experimentID).Order("code ASC"))
}

// FindByBatch lists all samples of a batch
func (r *GormSampleRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]sample.Sample, error) {
	return r.find(r.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("code ASC"))
}

// CountByProject counts samples of a project matching the filter
func (r *GormSampleRepository) CountByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.projectQuery(ctx, projectID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByExperiment counts samples attached to an experiment
func (r *GormSampleRepository) CountByExperiment(ctx context.Context, experimentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SampleModel{}).
		Where("experiment_id = ?", experimentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SaveBatch creates or updates samples in one transaction
func (r *GormSampleRepository) SaveBatch(ctx context.Context, samples []*sample.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range samples {
			if err := saveVersioned(tx, models.SampleModelFromDomain(s), s); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByIDs deletes samples
func (r *GormSampleRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.SampleModel{}).Error
}

func (r *GormSampleRepository) find(query *gorm.DB) ([]sample.Sample, error) {
	var rows []models.SampleModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	samples := make([]sample.Sample, 0, len(rows))
	for i := range rows {
		samples = append(samples, *rows[i].ToDomain())
	}
	return samples, nil
}

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*sample.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProject lists the batches of a project, oldest first
func (r *GormBatchRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]sample.Batch, error) {
	var rows []models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	batches := make([]sample.Batch, 0, len(rows))
	for i := range rows {
		batches = append(batches, *rows[i].ToDomain())
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, b *sample.Batch) error {
	return saveVersioned(r.db.WithContext(ctx), models.BatchModelFromDomain(b), b)
}

// Delete deletes a batch
func (r *GormBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BatchModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormCodeSequence hands out per project sample numbers from sample_statistics
type GormCodeSequence struct {
	db *gorm.DB
}

// NewGormCodeSequence creates a new GormCodeSequence
func NewGormCodeSequence(db *gorm.DB) *GormCodeSequence {
	return &GormCodeSequence{db: db}
}

// Next reserves count numbers for the project and returns the first one.
// Numbers start at 1.
func (s *GormCodeSequence) Next(ctx context.Context, projectID uuid.UUID, count int) (int, error) {
	if count < 1 {
		return 0, shared.ErrInvalidInput.Withf("count must be positive")
	}
	var first int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.SampleStatisticModel{}).
			Where("project_id = ?", projectID).
			Updates(map[string]any{
				"last_number": gorm.Expr("last_number + ?", count),
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			first = 1
			return tx.Create(&models.SampleStatisticModel{
				ProjectID:  projectID,
				LastNumber: count,
				UpdatedAt:  time.Now(),
			}).Error
		}
		var stat models.SampleStatisticModel
		if err := tx.First(&stat, "project_id = ?", projectID).Error; err != nil {
			return err
		}
		first = stat.LastNumber - count + 1
		return nil
	})
	if err != nil {
		return 0, translateError(err)
	}
	return first, nil
}

// GormQualityControlRepository implements QualityControlRepository using GORM
type GormQualityControlRepository struct {
	db *gorm.DB
}

// NewGormQualityControlRepository creates a new GormQualityControlRepository
func NewGormQualityControlRepository(db *gorm.DB) *GormQualityControlRepository {
	return &GormQualityControlRepository{db: db}
}

// Save stores a quality control record
func (r *GormQualityControlRepository) Save(ctx context.Context, qc *sample.QualityControl) error {
	return r.db.WithContext(ctx).Save(models.QualityControlModelFromDomain(qc)).Error
}

// FindByID finds a record by its ID
func (r *GormQualityControlRepository) FindByID(ctx context.Context, id uuid.UUID) (*sample.QualityControl, error) {
	var model models.QualityControlModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProject lists the records of a project, newest first
func (r *GormQualityControlRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]sample.QualityControl, error) {
	var rows []models.QualityControlModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("uploaded_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]sample.QualityControl, 0, len(rows))
	for i := range rows {
		records = append(records, *rows[i].ToDomain())
	}
	return records, nil
}

// Delete removes a record
func (r *GormQualityControlRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.QualityControlModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
