package notification

import (
	"context"
	"fmt"
	"net/url"

	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/domain/notification"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/auth"
	"go.uber.org/zap"
)

const (
	SubjectConfirmAccount = "Please confirm your email address"
	SubjectPasswordReset  = "Reset your password"
)

// AccountHandler sends the account confirmation and password reset links
type AccountHandler struct {
	notifier
	tokens ActionTokenIssuer
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(jobs notification.EmailJobRepository, tokens ActionTokenIssuer, baseURL string, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{notifier: newNotifier(jobs, baseURL, logger), tokens: tokens}
}

// EventTypes returns the event types this handler is interested in
func (h *AccountHandler) EventTypes() []string {
	return []string{identity.EventTypeUserRegistered, identity.EventTypePasswordResetRequested}
}

// Handle queues the email matching the event
func (h *AccountHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *identity.UserRegisteredEvent:
		link, err := h.actionLink("/confirm-email", e, auth.PurposeConfirmEmail)
		if err != nil {
			return err
		}
		return h.enqueue(ctx, notification.Email{
			RecipientName:  e.FullName,
			RecipientEmail: e.Email,
			Subject:        SubjectConfirmAccount,
			Body: fmt.Sprintf("Dear %s,\n\nthank you for registering as %q. "+
				"Please confirm your email address by following this link:\n\n%s\n\nYour data manager team",
				e.FullName, e.UserName, link),
		})
	case *identity.PasswordResetRequestedEvent:
		link, err := h.actionLink("/reset-password", e, auth.PurposePasswordReset)
		if err != nil {
			return err
		}
		return h.enqueue(ctx, notification.Email{
			RecipientName:  e.FullName,
			RecipientEmail: e.Email,
			Subject:        SubjectPasswordReset,
			Body: fmt.Sprintf("Dear %s,\n\na password reset was requested for your account. "+
				"Set a new password here:\n\n%s\n\nIf you did not request this, ignore this email.\n\nYour data manager team",
				e.FullName, link),
		})
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *AccountHandler) actionLink(path string, event shared.DomainEvent, purpose string) (string, error) {
	userID := event.AggregateID()
	token, err := h.tokens.IssueActionToken(userID, purpose)
	if err != nil {
		return "", fmt.Errorf("failed to issue %s token: %w", purpose, err)
	}
	return h.link(path, url.Values{"user": {userID.String()}, "token": {token}}), nil
}

var _ shared.EventHandler = (*AccountHandler)(nil)
