// Package notification turns domain events into queued emails.
package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/domain/notification"
	"go.uber.org/zap"
)

// ActionTokenIssuer issues the tokens embedded in confirmation and reset links
type ActionTokenIssuer interface {
	IssueActionToken(userID uuid.UUID, purpose string) (string, error)
}

// UserFinder looks up the recipients of notifications
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error)
}

// notifier holds what every handler needs to queue emails
type notifier struct {
	jobs    notification.EmailJobRepository
	baseURL string
	logger  *zap.Logger
}

func newNotifier(jobs notification.EmailJobRepository, baseURL string, logger *zap.Logger) notifier {
	return notifier{jobs: jobs, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// enqueue queues the emails, skipping recipients whose address is rejected
func (n notifier) enqueue(ctx context.Context, emails ...notification.Email) error {
	jobs := make([]*notification.EmailJob, 0, len(emails))
	for _, email := range emails {
		job, err := notification.NewEmailJob(email)
		if err != nil {
			n.logger.Warn("Skipping notification with invalid recipient",
				zap.String("recipient", email.RecipientEmail),
				zap.Error(err))
			continue
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil
	}
	if err := n.jobs.Enqueue(ctx, jobs...); err != nil {
		return fmt.Errorf("failed to enqueue email jobs: %w", err)
	}
	n.logger.Debug("Email jobs enqueued", zap.Int("count", len(jobs)))
	return nil
}

// link builds an absolute link into the web client
func (n notifier) link(path string, query url.Values) string {
	u := n.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
