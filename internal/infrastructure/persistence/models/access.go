package models

import (
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
)

// ACLEntryModel is one permission of a user (principal) or authority on a project
type ACLEntryModel struct {
	ProjectID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sid        string    `gorm:"type:varchar(255);primaryKey;index"`
	Principal  bool      `gorm:"primaryKey"`
	Permission string    `gorm:"type:varchar(16);primaryKey"`
}

// TableName returns the table name for GORM
func (ACLEntryModel) TableName() string {
	return "acl_entries"
}

// ToDomain converts the model to a domain Entry
func (m *ACLEntryModel) ToDomain() access.Entry {
	return access.Entry{
		ProjectID:  m.ProjectID,
		Sid:        m.Sid,
		Principal:  m.Principal,
		Permission: access.Permission(m.Permission),
	}
}

// ACLEntryModelFromDomain creates the model of a domain Entry
func ACLEntryModelFromDomain(e access.Entry) ACLEntryModel {
	return ACLEntryModel{
		ProjectID:  e.ProjectID,
		Sid:        e.Sid,
		Principal:  e.Principal,
		Permission: string(e.Permission),
	}
}
