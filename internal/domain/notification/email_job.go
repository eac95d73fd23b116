// Package notification contains emails queued for delivery to users.
package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// JobStatus is the delivery state of an email job
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusSent    JobStatus = "sent"
	JobStatusFailed  JobStatus = "failed" // gave up after the maximum number of attempts
)

// Email is the content of a message to a single recipient
type Email struct {
	RecipientName  string
	RecipientEmail string
	Subject        string
	Body           string
}

// EmailJob is an email waiting for delivery
type EmailJob struct {
	ID            uuid.UUID
	Email         Email
	Status        JobStatus
	Attempts      int
	LastError     string
	NextAttemptAt time.Time
	CreatedAt     time.Time
	SentAt        *time.Time
}

// NewEmailJob queues an email for immediate delivery
func NewEmailJob(email Email) (*EmailJob, error) {
	if err := shared.ValidateEmail(email.RecipientEmail); err != nil {
		return nil, err
	}
	if strings.TrimSpace(email.Subject) == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email subject must not be empty")
	}
	now := time.Now()
	return &EmailJob{
		ID:            uuid.New(),
		Email:         email,
		Status:        JobStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}

// MarkSent records a successful delivery
func (j *EmailJob) MarkSent(at time.Time) {
	j.Status = JobStatusSent
	j.Attempts++
	j.LastError = ""
	j.SentAt = &at
}

// MarkAttemptFailed records a failed delivery. The job is rescheduled after
// retryAfter until maxAttempts is reached, then it is marked failed.
func (j *EmailJob) MarkAttemptFailed(err error, now time.Time, retryAfter time.Duration, maxAttempts int) {
	j.Attempts++
	j.LastError = err.Error()
	if j.Attempts >= maxAttempts {
		j.Status = JobStatusFailed
		return
	}
	j.NextAttemptAt = now.Add(retryAfter)
}

// IsDue reports whether the job should be sent now
func (j *EmailJob) IsDue(now time.Time) bool {
	return j.Status == JobStatusPending && !j.NextAttemptAt.After(now)
}

// EmailJobRepository persists email jobs
type EmailJobRepository interface {
	// Enqueue stores new jobs
	Enqueue(ctx context.Context, jobs ...*EmailJob) error

	// FindDue lists pending jobs whose next attempt is due, oldest first
	FindDue(ctx context.Context, now time.Time, limit int) ([]*EmailJob, error)

	// Save updates a job after a delivery attempt
	Save(ctx context.Context, job *EmailJob) error
}

// Sender delivers a single email
type Sender interface {
	Send(ctx context.Context, email Email) error
}
