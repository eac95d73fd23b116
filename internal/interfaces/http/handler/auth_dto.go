package handler

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest represents the request body for user login
type LoginRequest struct {
	// Username or email address
	Username string `json:"username" binding:"required,min=3,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterRequest represents the request body for a new account
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,max=200"`
	Email    string `json:"email" binding:"required,email"`
	UserName string `json:"user_name" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// ConfirmEmailRequest carries the token from the confirmation mail
type ConfirmEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// PasswordResetRequest asks for a password reset mail
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest sets a new password with the mailed token
type PasswordResetConfirmRequest struct {
	UserID   uuid.UUID `json:"user_id" binding:"required"`
	Token    string    `json:"token" binding:"required"`
	Password string    `json:"password" binding:"required,min=8,max=128"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// CreateTokenRequest creates a personal access token
type CreateTokenRequest struct {
	Description string `json:"description" binding:"required,max=255"`
	// ValidDays defaults to identity.token_validity
	ValidDays int `json:"valid_days" binding:"omitempty,min=1,max=365"`
}

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type" example:"Bearer"`
}
