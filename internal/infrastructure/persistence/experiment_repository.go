package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExperimentRepository implements ExperimentRepository using GORM
type GormExperimentRepository struct {
	db *gorm.DB
}

// NewGormExperimentRepository creates a new GormExperimentRepository
func NewGormExperimentRepository(db *gorm.DB) *GormExperimentRepository {
	return &GormExperimentRepository{db: db}
}

// FindByID finds an experiment by its ID
func (r *GormExperimentRepository) FindByID(ctx context.Context, id uuid.UUID) (*experiment.Experiment, error) {
	var model models.ExperimentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProject finds all experiments of a project, oldest first
func (r *GormExperimentRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]experiment.Experiment, error) {
	var rows []models.ExperimentModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	experiments := make([]experiment.Experiment, 0, len(rows))
	for i := range rows {
		experiments = append(experiments, *rows[i].ToDomain())
	}
	return experiments, nil
}

// Save creates or updates an experiment
func (r *GormExperimentRepository) Save(ctx context.Context, e *experiment.Experiment) error {
	return saveVersioned(r.db.WithContext(ctx), models.ExperimentModelFromDomain(e), e)
}

// Delete deletes an experiment
func (r *GormExperimentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExperimentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormConfoundingRepository implements ConfoundingRepository using GORM
type GormConfoundingRepository struct {
	db *gorm.DB
}

// NewGormConfoundingRepository creates a new GormConfoundingRepository
func NewGormConfoundingRepository(db *gorm.DB) *GormConfoundingRepository {
	return &GormConfoundingRepository{db: db}
}

// SaveVariable creates or updates a confounding variable
func (r *GormConfoundingRepository) SaveVariable(ctx context.Context, v *experiment.ConfoundingVariable) error {
	model := models.ConfoundingVariableModel{ID: v.ID, ExperimentID: v.ExperimentID, Name: v.Name}
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindVariable finds a confounding variable by id
func (r *GormConfoundingRepository) FindVariable(ctx context.Context, id uuid.UUID) (*experiment.ConfoundingVariable, error) {
	var model models.ConfoundingVariableModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	v := model.ToDomain()
	return &v, nil
}

// FindVariablesByExperiment lists the confounding variables of an experiment
func (r *GormConfoundingRepository) FindVariablesByExperiment(ctx context.Context, experimentID uuid.UUID) ([]experiment.ConfoundingVariable, error) {
	var rows []models.ConfoundingVariableModel
	if err := r.db.WithContext(ctx).
		Where("experiment_id = ?", experimentID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	variables := make([]experiment.ConfoundingVariable, 0, len(rows))
	for i := range rows {
		variables = append(variables, rows[i].ToDomain())
	}
	return variables, nil
}

// DeleteVariable deletes a variable together with its levels
func (r *GormConfoundingRepository) DeleteVariable(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("variable_id = ?", id).Delete(&models.ConfoundingLevelModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ConfoundingVariableModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// UpsertLevels creates or replaces the given levels
func (r *GormConfoundingRepository) UpsertLevels(ctx context.Context, levels []experiment.ConfoundingLevel) error {
	if len(levels) == 0 {
		return nil
	}
	rows := make([]models.ConfoundingLevelModel, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, models.ConfoundingLevelModel{VariableID: l.VariableID, SampleID: l.SampleID, Value: l.Value})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variable_id"}, {Name: "sample_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
}

// FindLevelsBySamples lists all levels recorded for the samples
func (r *GormConfoundingRepository) FindLevelsBySamples(ctx context.Context, sampleIDs []uuid.UUID) ([]experiment.ConfoundingLevel, error) {
	if len(sampleIDs) == 0 {
		return []experiment.ConfoundingLevel{}, nil
	}
	var rows []models.ConfoundingLevelModel
	if err := r.db.WithContext(ctx).Where("sample_id IN ?", sampleIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	levels := make([]experiment.ConfoundingLevel, 0, len(rows))
	for i := range rows {
		levels = append(levels, rows[i].ToDomain())
	}
	return levels, nil
}

// DeleteLevelsBySamples removes all levels of the samples
func (r *GormConfoundingRepository) DeleteLevelsBySamples(ctx context.Context, sampleIDs []uuid.UUID) error {
	if len(sampleIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("sample_id IN ?", sampleIDs).Delete(&models.ConfoundingLevelModel{}).Error
}
