package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/notification"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

// SubjectAccessGranted is the subject of the project access notification
const SubjectAccessGranted = "Project access granted"

// ProjectFinder loads the project named in a notification
type ProjectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
}

// AccessGrantedHandler tells a user that a project was shared with them
type AccessGrantedHandler struct {
	notifier
	users    UserFinder
	projects ProjectFinder
}

// NewAccessGrantedHandler creates a new AccessGrantedHandler
func NewAccessGrantedHandler(jobs notification.EmailJobRepository, users UserFinder, projects ProjectFinder, baseURL string, logger *zap.Logger) *AccessGrantedHandler {
	return &AccessGrantedHandler{notifier: newNotifier(jobs, baseURL, logger), users: users, projects: projects}
}

// EventTypes returns the event types this handler is interested in
func (h *AccessGrantedHandler) EventTypes() []string {
	return []string{access.EventTypeAccessGranted}
}

// Handle queues the notification for the user who was granted access
func (h *AccessGrantedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	granted, ok := event.(*access.AccessGrantedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			access.EventTypeAccessGranted, event.EventType())
	}
	user, err := h.users.FindByID(ctx, granted.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", granted.UserID, err)
	}
	p, err := h.projects.FindByID(ctx, granted.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load project %s: %w", granted.ProjectID, err)
	}

	return h.enqueue(ctx, notification.Email{
		RecipientName:  user.FullName,
		RecipientEmail: user.Email,
		Subject:        SubjectAccessGranted,
		Body: fmt.Sprintf("Dear %s,\n\nyou have been granted %s access to project %s %q.\n\n"+
			"Open the project here: %s\n\nYour data manager team",
			user.FullName, strings.ToLower(string(granted.Permission)), p.Code, p.Title,
			h.link("/projects/"+granted.ProjectID.String(), nil)),
	})
}

var _ shared.EventHandler = (*AccessGrantedHandler)(nil)
