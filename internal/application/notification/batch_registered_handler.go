package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/notification"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

// SubjectSamplesAdded is the subject of the new batch notification
const SubjectSamplesAdded = "New samples added to project"

// CollaboratorLister lists the users holding a permission on a project
type CollaboratorLister interface {
	ListUserIDsWithPermission(ctx context.Context, projectID uuid.UUID, permission access.Permission) ([]uuid.UUID, error)
}

// BatchRegisteredHandler informs every project collaborator about a newly
// registered sample batch
type BatchRegisteredHandler struct {
	notifier
	collaborators CollaboratorLister
	users         UserFinder
}

// NewBatchRegisteredHandler creates a new BatchRegisteredHandler
func NewBatchRegisteredHandler(
	jobs notification.EmailJobRepository,
	collaborators CollaboratorLister,
	users UserFinder,
	baseURL string,
	logger *zap.Logger,
) *BatchRegisteredHandler {
	return &BatchRegisteredHandler{
		notifier:      newNotifier(jobs, baseURL, logger),
		collaborators: collaborators,
		users:         users,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BatchRegisteredHandler) EventTypes() []string {
	return []string{sample.EventTypeBatchRegistered}
}

// Handle queues one email per collaborator with read access
func (h *BatchRegisteredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	registered, ok := event.(*sample.BatchRegisteredEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sample.EventTypeBatchRegistered, event.EventType())
	}

	userIDs, err := h.collaborators.ListUserIDsWithPermission(ctx, registered.ProjectID, access.PermissionRead)
	if err != nil {
		return fmt.Errorf("failed to list project collaborators: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}
	users, err := h.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("failed to load project collaborators: %w", err)
	}

	projectLink := h.link("/projects/"+registered.ProjectID.String()+"/samples", nil)
	emails := make([]notification.Email, 0, len(users))
	for _, u := range users {
		emails = append(emails, notification.Email{
			RecipientName:  u.FullName,
			RecipientEmail: u.Email,
			Subject:        SubjectSamplesAdded,
			Body: fmt.Sprintf("Dear %s,\n\nthe sample batch %q was registered in project %q.\n\n"+
				"You can view the samples here: %s\n\nYour data manager team",
				u.FullName, registered.Label, registered.ProjectTitle, projectLink),
		})
	}

	h.logger.Info("Notifying collaborators about new batch",
		zap.String("project_id", registered.ProjectID.String()),
		zap.String("batch_id", registered.BatchID.String()),
		zap.Int("recipients", len(emails)))
	return h.enqueue(ctx, emails...)
}

var _ shared.EventHandler = (*BatchRegisteredHandler)(nil)
