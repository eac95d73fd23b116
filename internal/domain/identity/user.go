// Package identity contains user accounts and personal access tokens.
package identity

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"     // Awaiting email confirmation
	UserStatusActive      UserStatus = "active"      // Normal active status
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

// Authorities granted to users
const (
	AuthorityUser  = "ROLE_USER"
	AuthorityAdmin = "ROLE_ADMIN"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// User represents a user account
// It is the aggregate root for user-related operations
type User struct {
	shared.BaseAggregateRoot
	FullName          string
	Email             string
	UserName          string
	EncryptedPassword string
	OIDCIssuer        string
	OIDCID            string
	Status            UserStatus
	Authorities       []string
	RegisteredAt      time.Time
}

// Register creates a pending user account with an encrypted password
func Register(fullName, email, userName, rawPassword string, policy PasswordPolicy) (*User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot be empty")
	}
	if err := shared.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validateUserName(userName); err != nil {
		return nil, err
	}
	encrypted, err := policy.Encrypt(rawPassword)
	if err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FullName:          fullName,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		UserName:          strings.TrimSpace(userName),
		EncryptedPassword: encrypted,
		Status:            UserStatusPending,
		Authorities:       []string{AuthorityUser},
	}
	user.RegisteredAt = user.CreatedAt
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// ConfirmEmail activates a pending account
func (u *User) ConfirmEmail() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("USER_DEACTIVATED", "Cannot activate a deactivated user")
	}
	if u.Status == UserStatusActive {
		return nil
	}
	u.Status = UserStatusActive
	u.changed()
	u.AddDomainEvent(NewUserActivatedEvent(u))
	return nil
}

// RequestPasswordReset records a password reset request
func (u *User) RequestPasswordReset() error {
	if !u.IsActive() {
		return shared.NewDomainError("USER_NOT_ACTIVE", "Password reset is only possible for active users")
	}
	u.AddDomainEvent(NewPasswordResetRequestedEvent(u))
	return nil
}

// SetPassword replaces the password
func (u *User) SetPassword(rawPassword string, policy PasswordPolicy) error {
	encrypted, err := policy.Encrypt(rawPassword)
	if err != nil {
		return err
	}
	u.EncryptedPassword = encrypted
	u.changed()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(rawPassword string, policy PasswordPolicy) bool {
	return policy.Matches(rawPassword, u.EncryptedPassword)
}

// ChangeFullName changes the display name of the user
func (u *User) ChangeFullName(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot be empty")
	}
	u.FullName = fullName
	u.changed()
	return nil
}

// LinkOIDC links the account with an OpenID Connect identity
func (u *User) LinkOIDC(issuer, subject string) {
	u.OIDCIssuer = strings.TrimSpace(issuer)
	u.OIDCID = strings.TrimSpace(subject)
	u.changed()
}

// GrantAuthority adds an authority such as ROLE_ADMIN
func (u *User) GrantAuthority(authority string) {
	if slices.Contains(u.Authorities, authority) {
		return
	}
	u.Authorities = append(u.Authorities, authority)
	u.changed()
}

// HasAuthority checks if user has a specific authority
func (u *User) HasAuthority(authority string) bool {
	return slices.Contains(u.Authorities, authority)
}

// Deactivate deactivates the user
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}
	u.Status = UserStatusDeactivated
	u.changed()
	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	return nil
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) changed() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

func validateUserName(userName string) error {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(userName) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(userName) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(userName) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}
