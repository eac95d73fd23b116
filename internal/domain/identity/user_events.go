package identity

import (
	"github.com/qbic/datamanager/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered         = "UserRegistered"
	EventTypeUserActivated          = "UserActivated"
	EventTypeUserDeactivated        = "UserDeactivated"
	EventTypePasswordResetRequested = "PasswordResetRequested"
)

// UserRegisteredEvent is published when a user signs up
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	UserName string `json:"user_name"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		FullName:        user.FullName,
		Email:           user.Email,
		UserName:        user.UserName,
	}
}

// UserActivatedEvent is published when a user confirmed the email address
type UserActivatedEvent struct {
	shared.BaseDomainEvent
	UserName string `json:"user_name"`
}

// NewUserActivatedEvent creates a new UserActivatedEvent
func NewUserActivatedEvent(user *User) *UserActivatedEvent {
	return &UserActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserActivated, AggregateTypeUser, user.ID),
		UserName:        user.UserName,
	}
}

// UserDeactivatedEvent is published when a user is deactivated
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	UserName string `json:"user_name"`
}

// NewUserDeactivatedEvent creates a new UserDeactivatedEvent
func NewUserDeactivatedEvent(user *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, user.ID),
		UserName:        user.UserName,
	}
}

// PasswordResetRequestedEvent is published when a user asks for a reset link
type PasswordResetRequestedEvent struct {
	shared.BaseDomainEvent
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// NewPasswordResetRequestedEvent creates a new PasswordResetRequestedEvent
func NewPasswordResetRequestedEvent(user *User) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePasswordResetRequested, AggregateTypeUser, user.ID),
		FullName:        user.FullName,
		Email:           user.Email,
	}
}
