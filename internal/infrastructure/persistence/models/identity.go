package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	FullName          string              `gorm:"type:varchar(255);not null"`
	Email             string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	UserName          string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	EncryptedPassword string              `gorm:"type:varchar(255)"`
	OIDCIssuer        string              `gorm:"column:oidc_issuer;type:varchar(255)"`
	OIDCID            string              `gorm:"column:oidc_id;type:varchar(255)"`
	Status            identity.UserStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Authorities       []string            `gorm:"type:text;serializer:json"`
	RegisteredAt      time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.Root(),
		FullName:          m.FullName,
		Email:             m.Email,
		UserName:          m.UserName,
		EncryptedPassword: m.EncryptedPassword,
		OIDCIssuer:        m.OIDCIssuer,
		OIDCID:            m.OIDCID,
		Status:            m.Status,
		Authorities:       append([]string{}, m.Authorities...),
		RegisteredAt:      m.RegisteredAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.SetRoot(u.BaseAggregateRoot)
	m.FullName = u.FullName
	m.Email = u.Email
	m.UserName = u.UserName
	m.EncryptedPassword = u.EncryptedPassword
	m.OIDCIssuer = u.OIDCIssuer
	m.OIDCID = u.OIDCID
	m.Status = u.Status
	m.Authorities = append([]string{}, u.Authorities...)
	m.RegisteredAt = u.RegisteredAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// PersonalAccessTokenModel is the persistence model for personal access tokens
type PersonalAccessTokenModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Description   string    `gorm:"type:varchar(255)"`
	ExpiresAt     time.Time `gorm:"not null;index"`
	EncodedSecret string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PersonalAccessTokenModel) TableName() string {
	return "personal_access_tokens"
}

// ToDomain converts the model to a domain PersonalAccessToken
func (m *PersonalAccessTokenModel) ToDomain() identity.PersonalAccessToken {
	return identity.PersonalAccessToken{
		ID:            m.ID,
		UserID:        m.UserID,
		Description:   m.Description,
		ExpiresAt:     m.ExpiresAt,
		EncodedSecret: m.EncodedSecret,
		CreatedAt:     m.CreatedAt,
	}
}

// PersonalAccessTokenModelFromDomain creates the model of a domain token
func PersonalAccessTokenModelFromDomain(t *identity.PersonalAccessToken) *PersonalAccessTokenModel {
	return &PersonalAccessTokenModel{
		ID:            t.ID,
		UserID:        t.UserID,
		Description:   t.Description,
		ExpiresAt:     t.ExpiresAt,
		EncodedSecret: t.EncodedSecret,
		CreatedAt:     t.CreatedAt,
	}
}
