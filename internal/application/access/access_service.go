// Package access manages who may read, edit and administrate a project.
package access

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrAccessDenied is returned when the subject lacks a permission
var ErrAccessDenied = shared.NewDomainError("ACCESS_DENIED", "You are not allowed to perform this action on the project")

// Service grants and checks project permissions
type Service struct {
	acl       access.ACLRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates an access service. publisher may be nil.
func NewService(acl access.ACLRepository, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{acl: acl, publisher: publisher, logger: logger}
}

// GrantCreator gives the creator of a project every permission on it
func (s *Service) GrantCreator(ctx context.Context, projectID, userID uuid.UUID) error {
	entries := make([]access.Entry, 0, 3)
	for _, p := range access.AllPermissions() {
		entries = append(entries, access.UserEntry(projectID, userID, p))
	}
	return s.acl.Grant(ctx, entries...)
}

// Grant gives a user a permission. Granting WRITE or ADMIN implies READ.
func (s *Service) Grant(ctx context.Context, projectID, userID uuid.UUID, permission access.Permission) error {
	entries := []access.Entry{access.UserEntry(projectID, userID, access.PermissionRead)}
	if permission != access.PermissionRead {
		entries = append(entries, access.UserEntry(projectID, userID, permission))
	}
	if err := s.acl.Grant(ctx, entries...); err != nil {
		return fmt.Errorf("grant %s on project %s: %w", permission, projectID, err)
	}
	s.logger.Info("Project access granted",
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
		zap.String("permission", string(permission)))
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, access.NewAccessGrantedEvent(projectID, userID, permission)); err != nil {
			s.logger.Warn("Failed to publish access granted event", zap.Error(err))
		}
	}
	return nil
}

// GrantToAuthority gives every holder of an authority a permission
func (s *Service) GrantToAuthority(ctx context.Context, projectID uuid.UUID, authority string, permission access.Permission) error {
	return s.acl.Grant(ctx, access.AuthorityEntry(projectID, authority, permission))
}

// Deny removes a single permission of a user
func (s *Service) Deny(ctx context.Context, projectID, userID uuid.UUID, permission access.Permission) error {
	return s.acl.Deny(ctx, access.UserEntry(projectID, userID, permission))
}

// DenyAll removes every permission of a user on the project
func (s *Service) DenyAll(ctx context.Context, projectID, userID uuid.UUID) error {
	return s.acl.DenyAll(ctx, projectID, userID.String(), true)
}

// ListUserIDs lists users holding any permission on the project
func (s *Service) ListUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return s.usersWith(ctx, projectID, "")
}

// ListUserIDsWithPermission lists users holding the permission on the project
func (s *Service) ListUserIDsWithPermission(ctx context.Context, projectID uuid.UUID, permission access.Permission) ([]uuid.UUID, error) {
	return s.usersWith(ctx, projectID, permission)
}

func (s *Service) usersWith(ctx context.Context, projectID uuid.UUID, permission access.Permission) ([]uuid.UUID, error) {
	entries, err := s.acl.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if !e.Principal || (permission != "" && e.Permission != permission) {
			continue
		}
		id, err := uuid.Parse(e.Sid)
		if err != nil {
			s.logger.Warn("Skipping malformed user sid", zap.String("sid", e.Sid))
			continue
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ListAuthorities lists the authorities holding any permission on the project
func (s *Service) ListAuthorities(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	return s.authoritiesWith(ctx, projectID, "")
}

// ListAuthoritiesForPermission lists the authorities holding the permission
func (s *Service) ListAuthoritiesForPermission(ctx context.Context, projectID uuid.UUID, permission access.Permission) ([]string, error) {
	return s.authoritiesWith(ctx, projectID, permission)
}

func (s *Service) authoritiesWith(ctx context.Context, projectID uuid.UUID, permission access.Permission) ([]string, error) {
	entries, err := s.acl.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var authorities []string
	for _, e := range entries {
		if e.Principal || (permission != "" && e.Permission != permission) {
			continue
		}
		if !slices.Contains(authorities, e.Sid) {
			authorities = append(authorities, e.Sid)
		}
	}
	return authorities, nil
}

// Entries lists the raw access control entries of a project
func (s *Service) Entries(ctx context.Context, projectID uuid.UUID) ([]access.Entry, error) {
	return s.acl.FindByProject(ctx, projectID)
}

// AccessibleProjectIDs lists the projects the subject holds the permission
// on. Administrators get nil, meaning no restriction.
func (s *Service) AccessibleProjectIDs(ctx context.Context, subject access.Subject, permission access.Permission) ([]uuid.UUID, error) {
	if subject.IsAdmin() {
		return nil, nil
	}
	ids, err := s.acl.ProjectIDs(ctx, subject.Sids(), permission)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// HasPermission reports whether the subject holds the permission
func (s *Service) HasPermission(ctx context.Context, subject access.Subject, projectID uuid.UUID, permission access.Permission) (bool, error) {
	if subject.IsAdmin() {
		return true, nil
	}
	return s.acl.Exists(ctx, projectID, subject.Sids(), permission)
}

// Require returns ErrAccessDenied unless the subject holds the permission
func (s *Service) Require(ctx context.Context, subject access.Subject, projectID uuid.UUID, permission access.Permission) error {
	ok, err := s.HasPermission(ctx, subject, projectID, permission)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// RemoveProject drops all entries of a deleted project
func (s *Service) RemoveProject(ctx context.Context, projectID uuid.UUID) error {
	return s.acl.DeleteProject(ctx, projectID)
}
