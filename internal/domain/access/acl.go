// Package access holds the project access control list.
package access

import (
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// Permission is a right on a project
type Permission string

const (
	PermissionRead  Permission = "READ"
	PermissionWrite Permission = "WRITE"
	PermissionAdmin Permission = "ADMIN"
)

// AdminAuthority implicitly holds every permission on every project
const AdminAuthority = "ROLE_ADMIN"

// AllPermissions returns every permission, granted to project creators
func AllPermissions() []Permission {
	return []Permission{PermissionRead, PermissionWrite, PermissionAdmin}
}

// ParsePermission parses a permission name
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return p, nil
	}
	return "", shared.NewDomainError("INVALID_PERMISSION", "Unknown permission: "+s)
}

// Entry grants a permission on a project to a user (principal) or an authority
type Entry struct {
	ProjectID  uuid.UUID  `json:"project_id"`
	Sid        string     `json:"sid"`
	Principal  bool       `json:"principal"`
	Permission Permission `json:"permission"`
}

// UserEntry creates an entry for a user
func UserEntry(projectID, userID uuid.UUID, permission Permission) Entry {
	return Entry{ProjectID: projectID, Sid: userID.String(), Principal: true, Permission: permission}
}

// AuthorityEntry creates an entry for an authority such as ROLE_ADMIN
func AuthorityEntry(projectID uuid.UUID, authority string, permission Permission) Entry {
	return Entry{ProjectID: projectID, Sid: authority, Principal: false, Permission: permission}
}

// Subject is whoever asks for access: a user and the authorities it holds
type Subject struct {
	UserID      uuid.UUID
	Authorities []string
}

// IsAdmin reports whether the subject holds the admin authority
func (s Subject) IsAdmin() bool {
	for _, a := range s.Authorities {
		if a == AdminAuthority {
			return true
		}
	}
	return false
}

// Sids returns the security identities of the subject
func (s Subject) Sids() []string {
	sids := make([]string, 0, len(s.Authorities)+1)
	sids = append(sids, s.UserID.String())
	return append(sids, s.Authorities...)
}
