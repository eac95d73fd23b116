package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/infrastructure/auth"
)

// LoginInput contains the credentials of a login attempt
type LoginInput struct {
	// Username or email address
	Username string
	Password string
}

// LoginResult contains the issued tokens and the logged in user
type LoginResult struct {
	Token *auth.TokenPair `json:"token"`
	User  UserInfo        `json:"user"`
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	UserName     string    `json:"user_name"`
	Status       string    `json:"status"`
	Authorities  []string  `json:"authorities"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ToUserInfo converts a user into its public view
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		UserName:     u.UserName,
		Status:       string(u.Status),
		Authorities:  u.Authorities,
		RegisteredAt: u.RegisteredAt,
	}
}

// RegisterInput contains the data of a new account
type RegisterInput struct {
	FullName string
	Email    string
	UserName string
	Password string
}

// TokenInfo describes a personal access token without its secret
type TokenInfo struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	ExpiresAt   time.Time `json:"expires_at"`
	Expired     bool      `json:"expired"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatedToken is returned once when a token is created. Token holds the
// raw value the user has to copy.
type CreatedToken struct {
	TokenInfo
	Token string `json:"token"`
}

func toTokenInfo(t *identity.PersonalAccessToken, now time.Time) TokenInfo {
	return TokenInfo{
		ID:          t.ID,
		Description: t.Description,
		ExpiresAt:   t.ExpiresAt,
		Expired:     t.IsExpired(now),
		CreatedAt:   t.CreatedAt,
	}
}
