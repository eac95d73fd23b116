package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/infrastructure/auth"
	"github.com/qbic/datamanager/internal/infrastructure/logger"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by Authenticate
const (
	ClaimsKey      = "auth_claims"
	UserIDKey      = "user_id"
	AuthoritiesKey = "authorities"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// TokenAuthenticator resolves personal access tokens
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, rawToken string) (*identity.User, error)
}

// AuthConfig holds configuration of the authentication middleware
type AuthConfig struct {
	// JWTService validates access tokens and is required
	JWTService *auth.JWTService
	// Revocations is checked for revoked access tokens when set
	Revocations auth.Revocations
	// Tokens enables personal access tokens (Bearer pat_...) when set
	Tokens TokenAuthenticator
	// SkipPaths don't require authentication
	SkipPaths []string
	// SkipPathPrefixes don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultAuthConfig returns the configuration with the public endpoints
// of the API skipped
func DefaultAuthConfig(jwtService *auth.JWTService) AuthConfig {
	return AuthConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/auth/register",
			"/api/v1/auth/password-reset",
			"/api/v1/auth/password-reset/confirm",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api/v1/auth/confirm/",
		},
		Logger: zap.NewNop(),
	}
}

// Authenticate accepts a JWT access token or a personal access token in
// the Authorization header and stores the caller in the gin context
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if skipped(c.Request.URL.Path, cfg.SkipPaths, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		token, ok := strings.CutPrefix(header, BearerPrefix)
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			unauthorized(c, cfg, auth.ErrInvalidToken, "Missing or malformed authorization header")
			return
		}

		ctx := c.Request.Context()
		if strings.HasPrefix(token, identity.TokenPrefix) && cfg.Tokens != nil {
			user, err := cfg.Tokens.AuthenticateToken(ctx, token)
			if err != nil {
				unauthorized(c, cfg, err, "Personal access token rejected")
				return
			}
			setCaller(c, user.ID.String(), user.Authorities)
			c.Next()
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			unauthorized(c, cfg, err, "Token validation failed")
			return
		}
		if cfg.Revocations != nil {
			if revoked, err := cfg.Revocations.IsRevoked(ctx, claims); err != nil {
				// requests pass when redis is down
				cfg.Logger.Error("Failed to check token revocation", zap.String("user_id", claims.UserID), zap.Error(err))
			} else if revoked {
				unauthorized(c, cfg, auth.ErrTokenRevoked, "Token has been revoked")
				return
			}
		}

		c.Set(ClaimsKey, claims)
		setCaller(c, claims.UserID, claims.Authorities)
		c.Next()
	}
}

func setCaller(c *gin.Context, userID string, authorities []string) {
	c.Set(UserIDKey, userID)
	c.Set(AuthoritiesKey, authorities)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID))
}

func skipped(path string, paths, prefixes []string) bool {
	for _, p := range paths {
		if path == p {
			return true
		}
	}
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func unauthorized(c *gin.Context, cfg AuthConfig, err error, reason string) {
	cfg.Logger.Debug("Authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", reason),
		zap.Error(err))

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken), errors.Is(err, identity.ErrTokenExpired):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = dto.ErrCodeTokenInvalid, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// GetClaims returns the JWT claims of the caller, nil for token callers
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(UserIDKey))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetSubject returns the caller as an access control subject
func GetSubject(c *gin.Context) (access.Subject, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return access.Subject{}, false
	}
	return access.Subject{UserID: id, Authorities: c.GetStringSlice(AuthoritiesKey)}, true
}
