package access

import (
	"context"

	"github.com/google/uuid"
)

// ACLRepository stores access control entries
type ACLRepository interface {
	// Grant adds entries, existing ones are kept
	Grant(ctx context.Context, entries ...Entry) error

	// Deny removes a single entry
	Deny(ctx context.Context, entry Entry) error

	// DenyAll removes all entries of a sid on a project
	DenyAll(ctx context.Context, projectID uuid.UUID, sid string, principal bool) error

	// FindByProject lists all entries of a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]Entry, error)

	// Exists reports whether any of the sids holds the permission on the project
	Exists(ctx context.Context, projectID uuid.UUID, sids []string, permission Permission) (bool, error)

	// ProjectIDs lists projects on which any of the sids holds the permission
	ProjectIDs(ctx context.Context, sids []string, permission Permission) ([]uuid.UUID, error)

	// AllProjectIDs lists every project that has entries
	AllProjectIDs(ctx context.Context) ([]uuid.UUID, error)

	// DeleteProject removes all entries of a project
	DeleteProject(ctx context.Context, projectID uuid.UUID) error
}
