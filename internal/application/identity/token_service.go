package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateToken creates a personal access token. The returned raw token is
// prefixed with identity.TokenPrefix and is not retrievable later.
func (s *AuthService) CreateToken(ctx context.Context, userID uuid.UUID, description string, validFor time.Duration) (*CreatedToken, error) {
	if validFor <= 0 {
		validFor = s.config.TokenValidity
	}
	token, raw, err := identity.NewPersonalAccessToken(userID, description, validFor, s.encoder)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, err
	}
	s.logger.Info("Personal access token created",
		zap.String("user_id", userID.String()),
		zap.String("token_id", token.ID.String()))
	return &CreatedToken{TokenInfo: toTokenInfo(token, s.now()), Token: identity.TokenPrefix + raw}, nil
}

// ListTokens lists the tokens of a user
func (s *AuthService) ListTokens(ctx context.Context, userID uuid.UUID) ([]TokenInfo, error) {
	tokens, err := s.tokens.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	infos := make([]TokenInfo, 0, len(tokens))
	for i := range tokens {
		infos = append(infos, toTokenInfo(&tokens[i], now))
	}
	return infos, nil
}

// DeleteToken revokes a token of the user
func (s *AuthService) DeleteToken(ctx context.Context, userID, tokenID uuid.UUID) error {
	return s.tokens.Delete(ctx, userID, tokenID)
}

// AuthenticateToken resolves the user behind a raw personal access token
// of the form pat_<secret>
func (s *AuthService) AuthenticateToken(ctx context.Context, rawToken string) (*identity.User, error) {
	secret, ok := strings.CutPrefix(strings.TrimSpace(rawToken), identity.TokenPrefix)
	if !ok || secret == "" {
		return nil, ErrInvalidAccessToken
	}
	token, err := s.tokens.FindByEncodedSecret(ctx, s.encoder.Encode(secret))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidAccessToken
		}
		return nil, err
	}
	if token.IsExpired(s.now()) {
		return nil, identity.ErrTokenExpired
	}
	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	return user, nil
}
