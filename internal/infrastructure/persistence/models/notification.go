package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/notification"
)

// EmailJobModel is the persistence model for queued emails
type EmailJobModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecipientName  string    `gorm:"type:varchar(255)"`
	RecipientEmail string    `gorm:"type:varchar(255);not null"`
	Subject        string    `gorm:"type:varchar(255);not null"`
	Body           string    `gorm:"type:text"`
	Status         string    `gorm:"type:varchar(16);not null;index:idx_email_jobs_due"`
	Attempts       int       `gorm:"not null;default:0"`
	LastError      string    `gorm:"type:text"`
	NextAttemptAt  time.Time `gorm:"not null;index:idx_email_jobs_due"`
	CreatedAt      time.Time `gorm:"not null"`
	SentAt         *time.Time
}

// TableName returns the table name for GORM
func (EmailJobModel) TableName() string {
	return "email_jobs"
}

// ToDomain converts the model to a domain EmailJob
func (m *EmailJobModel) ToDomain() *notification.EmailJob {
	return &notification.EmailJob{
		ID: m.ID,
		Email: notification.Email{
			RecipientName:  m.RecipientName,
			RecipientEmail: m.RecipientEmail,
			Subject:        m.Subject,
			Body:           m.Body,
		},
		Status:        notification.JobStatus(m.Status),
		Attempts:      m.Attempts,
		LastError:     m.LastError,
		NextAttemptAt: m.NextAttemptAt,
		CreatedAt:     m.CreatedAt,
		SentAt:        m.SentAt,
	}
}

// EmailJobModelFromDomain creates the model of a domain EmailJob
func EmailJobModelFromDomain(j *notification.EmailJob) *EmailJobModel {
	return &EmailJobModel{
		ID:             j.ID,
		RecipientName:  j.Email.RecipientName,
		RecipientEmail: j.Email.RecipientEmail,
		Subject:        j.Email.Subject,
		Body:           j.Email.Body,
		Status:         string(j.Status),
		Attempts:       j.Attempts,
		LastError:      j.LastError,
		NextAttemptAt:  j.NextAttemptAt,
		CreatedAt:      j.CreatedAt,
		SentAt:         j.SentAt,
	}
}
