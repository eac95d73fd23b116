package persistence

import (
	"context"
	"time"

	"github.com/qbic/datamanager/internal/domain/notification"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEmailJobRepository implements EmailJobRepository on the email_jobs table
type GormEmailJobRepository struct {
	db *gorm.DB
}

// NewGormEmailJobRepository creates a new GormEmailJobRepository
func NewGormEmailJobRepository(db *gorm.DB) *GormEmailJobRepository {
	return &GormEmailJobRepository{db: db}
}

// Enqueue stores new jobs
func (r *GormEmailJobRepository) Enqueue(ctx context.Context, jobs ...*notification.EmailJob) error {
	if len(jobs) == 0 {
		return nil
	}
	rows := make([]*models.EmailJobModel, len(jobs))
	for i, j := range jobs {
		rows[i] = models.EmailJobModelFromDomain(j)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindDue lists pending jobs whose next attempt is due, oldest first
func (r *GormEmailJobRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*notification.EmailJob, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.EmailJobModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", string(notification.JobStatusPending), now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	jobs := make([]*notification.EmailJob, len(rows))
	for i := range rows {
		jobs[i] = rows[i].ToDomain()
	}
	return jobs, nil
}

// Save updates a job after a delivery attempt
func (r *GormEmailJobRepository) Save(ctx context.Context, job *notification.EmailJob) error {
	return r.db.WithContext(ctx).Save(models.EmailJobModelFromDomain(job)).Error
}
