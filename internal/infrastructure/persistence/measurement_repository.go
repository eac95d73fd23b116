package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMeasurementRepository implements MeasurementRepository using GORM.
// Genomics and proteomics measurements live in separate tables and share
// the measurement_samples link table.
type GormMeasurementRepository struct {
	db *gorm.DB
}

// NewGormMeasurementRepository creates a new GormMeasurementRepository
func NewGormMeasurementRepository(db *gorm.DB) *GormMeasurementRepository {
	return &GormMeasurementRepository{db: db}
}

// SaveNGS creates or updates genomics measurements in one transaction
func (r *GormMeasurementRepository) SaveNGS(ctx context.Context, measurements ...*measurement.NGSMeasurement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range measurements {
			if !m.IsDirty() {
				continue
			}
			if err := saveVersioned(tx, models.NGSMeasurementModelFromDomain(m), m); err != nil {
				return err
			}
			if err := relinkSamples(tx, &m.Measurement, models.MeasurementDomainNGS); err != nil {
				return err
			}
		}
		return nil
	})
}

// SavePxP creates or updates proteomics measurements in one transaction
func (r *GormMeasurementRepository) SavePxP(ctx context.Context, measurements ...*measurement.ProteomicsMeasurement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range measurements {
			if !m.IsDirty() {
				continue
			}
			if err := saveVersioned(tx, models.PxPMeasurementModelFromDomain(m), m); err != nil {
				return err
			}
			if err := relinkSamples(tx, &m.Measurement, models.MeasurementDomainPxP); err != nil {
				return err
			}
		}
		return nil
	})
}

func relinkSamples(tx *gorm.DB, m *measurement.Measurement, domain string) error {
	if err := tx.Where("measurement_id = ?", m.ID).Delete(&models.MeasurementSampleModel{}).Error; err != nil {
		return err
	}
	links := make([]models.MeasurementSampleModel, 0, len(m.SampleIDs))
	seen := make(map[uuid.UUID]bool, len(m.SampleIDs))
	for _, sampleID := range m.SampleIDs {
		if seen[sampleID] {
			continue
		}
		seen[sampleID] = true
		links = append(links, models.MeasurementSampleModel{
			MeasurementID: m.ID,
			SampleID:      sampleID,
			ProjectID:     m.ProjectID,
			Domain:        domain,
		})
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Create(&links).Error
}

// FindNGS finds a genomics measurement by id
func (r *GormMeasurementRepository) FindNGS(ctx context.Context, id uuid.UUID) (*measurement.NGSMeasurement, error) {
	var model models.NGSMeasurementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain()
}

// FindPxP finds a proteomics measurement by id
func (r *GormMeasurementRepository) FindPxP(ctx context.Context, id uuid.UUID) (*measurement.ProteomicsMeasurement, error) {
	var model models.PxPMeasurementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain()
}

// FindNGSByCode finds a genomics measurement by code
func (r *GormMeasurementRepository) FindNGSByCode(ctx context.Context, code measurement.Code) (*measurement.NGSMeasurement, error) {
	var model models.NGSMeasurementModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code.String()).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain()
}

// FindPxPByCode finds a proteomics measurement by code
func (r *GormMeasurementRepository) FindPxPByCode(ctx context.Context, code measurement.Code) (*measurement.ProteomicsMeasurement, error) {
	var model models.PxPMeasurementModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code.String()).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain()
}

func (r *GormMeasurementRepository) projectQuery(ctx context.Context, model any, projectID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(model).Where("project_id = ?", projectID)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			`LOWER(code) LIKE ? ESCAPE '\' OR LOWER(facility) LIKE ? ESCAPE '\' OR LOWER(organisation_label) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
	return applyPaging(query, filter, measurementSorting, "")
}

// FindNGSByProject lists genomics measurements of a project
func (r *GormMeasurementRepository) FindNGSByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]measurement.NGSMeasurement, error) {
	var rows []models.NGSMeasurementModel
	if err := r.projectQuery(ctx, &models.NGSMeasurementModel{}, projectID, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]measurement.NGSMeasurement, 0, len(rows))
	for i := range rows {
		m, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, nil
}

// FindPxPByProject lists proteomics measurements of a project
func (r *GormMeasurementRepository) FindPxPByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]measurement.ProteomicsMeasurement, error) {
	var rows []models.PxPMeasurementModel
	if err := r.projectQuery(ctx, &models.PxPMeasurementModel{}, projectID, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]measurement.ProteomicsMeasurement, 0, len(rows))
	for i := range rows {
		m, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, nil
}

// ExistsCode reports whether a measurement with the code exists in either table
func (r *GormMeasurementRepository) ExistsCode(ctx context.Context, code measurement.Code) (bool, error) {
	for _, model := range []any{&models.NGSMeasurementModel{}, &models.PxPMeasurementModel{}} {
		var count int64
		if err := r.db.WithContext(ctx).Model(model).Where("code = ?", code.String()).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// CountBySampleIDs counts distinct measurements referencing any of the samples
func (r *GormMeasurementRepository) CountBySampleIDs(ctx context.Context, sampleIDs []uuid.UUID) (int64, error) {
	if len(sampleIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MeasurementSampleModel{}).
		Where("sample_id IN ?", sampleIDs).
		Distinct("measurement_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByIDs finds measurements of both kinds by their ids
func (r *GormMeasurementRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]measurement.Measurement, error) {
	if len(ids) == 0 {
		return []measurement.Measurement{}, nil
	}
	var ngs []models.NGSMeasurementModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ngs).Error; err != nil {
		return nil, err
	}
	var pxp []models.PxPMeasurementModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&pxp).Error; err != nil {
		return nil, err
	}
	result := make([]measurement.Measurement, 0, len(ngs)+len(pxp))
	for i := range ngs {
		m, err := ngs[i].ToDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, m.Measurement)
	}
	for i := range pxp {
		m, err := pxp[i].ToDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, m.Measurement)
	}
	return result, nil
}

// DeleteByIDs deletes measurements of both kinds together with their sample links
func (r *GormMeasurementRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("measurement_id IN ?", ids).Delete(&models.MeasurementSampleModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.NGSMeasurementModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.PxPMeasurementModel{}).Error
	})
}

// GormRawDataLookup implements RawDataLookup on the raw_data table
type GormRawDataLookup struct {
	db *gorm.DB
}

// NewGormRawDataLookup creates a new GormRawDataLookup
func NewGormRawDataLookup(db *gorm.DB) *GormRawDataLookup {
	return &GormRawDataLookup{db: db}
}

// CountByMeasurementCodes counts raw datasets registered for the measurements
func (l *GormRawDataLookup) CountByMeasurementCodes(ctx context.Context, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	var count int64
	if err := l.db.WithContext(ctx).Model(&models.RawDataModel{}).
		Where("measurement_code IN ?", codes).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
