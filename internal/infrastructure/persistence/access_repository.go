package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormACLRepository implements ACLRepository on the acl_entries table
type GormACLRepository struct {
	db *gorm.DB
}

// NewGormACLRepository creates a new GormACLRepository
func NewGormACLRepository(db *gorm.DB) *GormACLRepository {
	return &GormACLRepository{db: db}
}

// Grant adds entries, existing ones are kept
func (r *GormACLRepository) Grant(ctx context.Context, entries ...access.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.ACLEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.ACLEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// Deny removes a single entry
func (r *GormACLRepository) Deny(ctx context.Context, entry access.Entry) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND sid = ? AND principal = ? AND permission = ?",
			entry.ProjectID, entry.Sid, entry.Principal, string(entry.Permission)).
		Delete(&models.ACLEntryModel{}).Error
}

// DenyAll removes all entries of a sid on a project
func (r *GormACLRepository) DenyAll(ctx context.Context, projectID uuid.UUID, sid string, principal bool) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND sid = ? AND principal = ?", projectID, sid, principal).
		Delete(&models.ACLEntryModel{}).Error
}

// FindByProject lists all entries of a project
func (r *GormACLRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]access.Entry, error) {
	var rows []models.ACLEntryModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("principal DESC, sid ASC, permission ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]access.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Exists reports whether any of the sids holds the permission on the project
func (r *GormACLRepository) Exists(ctx context.Context, projectID uuid.UUID, sids []string, permission access.Permission) (bool, error) {
	if len(sids) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ACLEntryModel{}).
		Where("project_id = ? AND sid IN ? AND permission = ?", projectID, sids, string(permission)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ProjectIDs lists projects on which any of the sids holds the permission
func (r *GormACLRepository) ProjectIDs(ctx context.Context, sids []string, permission access.Permission) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if len(sids) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&models.ACLEntryModel{}).
		Where("sid IN ? AND permission = ?", sids, string(permission)).
		Distinct().
		Pluck("project_id", &ids).Error
	return ids, err
}

// AllProjectIDs lists every project that has entries
func (r *GormACLRepository) AllProjectIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.WithContext(ctx).Model(&models.ACLEntryModel{}).
		Distinct().
		Pluck("project_id", &ids).Error
	return ids, err
}

// DeleteProject removes all entries of a project
func (r *GormACLRepository) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.ACLEntryModel{}).Error
}
