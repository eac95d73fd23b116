// Package identity handles user accounts, logins and personal access tokens.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Errors returned by the auth service
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrEmailInUse         = shared.NewDomainError("EMAIL_IN_USE", "An account with this email address already exists")
	ErrUserNameInUse      = shared.NewDomainError("USERNAME_IN_USE", "This username is already taken")
	ErrInvalidActionToken = shared.NewDomainError("INVALID_ACTION_TOKEN", "The link is invalid or has expired")
	ErrInvalidAccessToken = shared.NewDomainError("INVALID_TOKEN", "Invalid personal access token")
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// TokenValidity is the default lifetime of personal access tokens
	TokenValidity time.Duration
	// ActionTokenValidity is the lifetime of confirmation and reset links
	ActionTokenValidity time.Duration
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		TokenValidity:       90 * 24 * time.Hour,
		ActionTokenValidity: 24 * time.Hour,
	}
}

// AuthService handles authentication and account operations
type AuthService struct {
	users       identity.UserRepository
	tokens      identity.TokenRepository
	jwt         *auth.JWTService
	revocations auth.Revocations
	policy      identity.PasswordPolicy
	encoder     identity.TokenEncoder
	publisher   shared.EventPublisher
	config      AuthServiceConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	tokens identity.TokenRepository,
	jwt *auth.JWTService,
	revocations auth.Revocations,
	policy identity.PasswordPolicy,
	encoder identity.TokenEncoder,
	publisher shared.EventPublisher,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		jwt:         jwt,
		revocations: revocations,
		policy:      policy,
		encoder:     encoder,
		publisher:   publisher,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// Login authenticates a user by username or email and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	login := strings.TrimSpace(input.Username)
	s.logger.Info("Login attempt", zap.String("username", login))

	var user *identity.User
	var err error
	if strings.Contains(login, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.users.FindByUserName(ctx, login)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("username", login))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password, s.policy) {
		s.logger.Warn("Invalid password attempt", zap.String("username", login))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		s.logger.Warn("Login attempt for inactive account",
			zap.String("username", login),
			zap.String("status", string(user.Status)))
		if user.Status == identity.UserStatusPending {
			return nil, shared.NewDomainError("ACCOUNT_PENDING", "Please confirm your email address first")
		}
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:      user.ID,
		Username:    user.UserName,
		Authorities: user.Authorities,
	})
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate tokens")
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &LoginResult{Token: pair, User: ToUserInfo(user)}, nil
}

// RefreshToken issues a new token pair with the user's current authorities
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	}
	if revoked, err := s.isRevoked(ctx, claims); err != nil || revoked {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Refresh token has been revoked")
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Invalid refresh token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "User no longer exists")
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	pair, err := s.jwt.RefreshTokenPair(refreshToken, user.Authorities)
	if err != nil {
		if errors.Is(err, auth.ErrMaxRefreshExceeded) {
			return nil, shared.NewDomainError("REFRESH_LIMIT_EXCEEDED", "Please log in again")
		}
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Invalid refresh token")
	}
	if s.revocations != nil {
		if err := s.revocations.RevokeToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			s.logger.Warn("Failed to revoke used refresh token", zap.Error(err))
		}
	}
	return pair, nil
}

func (s *AuthService) isRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	if s.revocations == nil {
		return false, nil
	}
	return s.revocations.IsRevoked(ctx, claims)
}

// Logout revokes the access token identified by its claims
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revocations == nil || claims == nil {
		return nil
	}
	return s.revocations.RevokeToken(ctx, claims.ID, claims.RemainingTTL())
}

// Register creates a pending account. A confirmation email is sent by the
// notification handlers listening for the registration event.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailInUse
	}
	exists, err = s.users.ExistsByUserName(ctx, strings.TrimSpace(input.UserName))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserNameInUse
	}

	user, err := identity.Register(input.FullName, email, input.UserName, input.Password, s.policy)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish registration events", zap.Error(err))
	}
	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// ConfirmEmail activates the account if the confirmation token is valid
func (s *AuthService) ConfirmEmail(ctx context.Context, userID uuid.UUID, token string) error {
	if _, err := s.jwt.ValidateActionToken(token, auth.PurposeConfirmEmail, userID); err != nil {
		return ErrInvalidActionToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ConfirmEmail(); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish activation event", zap.Error(err))
	}
	return nil
}

// RequestPasswordReset triggers a reset email. Unknown addresses are
// ignored so that the endpoint does not reveal registered accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Password reset for unknown email requested")
			return nil
		}
		return err
	}
	if err := user.RequestPasswordReset(); err != nil {
		s.logger.Info("Password reset for inactive user ignored", zap.String("user_id", user.ID.String()))
		return nil
	}
	return shared.PublishAndClear(ctx, s.publisher, user)
}

// ResetPassword sets a new password with a token from a reset email and
// invalidates all sessions of the user
func (s *AuthService) ResetPassword(ctx context.Context, userID uuid.UUID, token, newPassword string) error {
	if _, err := s.jwt.ValidateActionToken(token, auth.PurposePasswordReset, userID); err != nil {
		return ErrInvalidActionToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword, s.policy); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if s.revocations != nil {
		if err := s.revocations.RevokeSessions(ctx, userID.String(), 7*24*time.Hour); err != nil {
			s.logger.Warn("Failed to invalidate sessions after password reset", zap.Error(err))
		}
	}
	return nil
}

// ChangePassword replaces the password after checking the old one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(oldPassword, s.policy) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := user.SetPassword(newPassword, s.policy); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// GetCurrentUser returns the logged in user
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// IssueActionToken creates the token embedded in confirmation and reset links
func (s *AuthService) IssueActionToken(userID uuid.UUID, purpose string) (string, error) {
	return s.jwt.IssueActionToken(userID, purpose, s.config.ActionTokenValidity)
}
