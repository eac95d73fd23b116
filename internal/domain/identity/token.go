package identity

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// Personal access token settings
const (
	TokenPrefix       = "pat_"
	rawTokenLength    = 32
	rawTokenAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxTokenValidDays = 365
)

// ErrTokenExpired is returned when an expired token is used
var ErrTokenExpired = shared.NewDomainError("TOKEN_EXPIRED", "Personal access token has expired")

// TokenEncoder hashes raw personal access tokens
type TokenEncoder interface {
	Encode(raw string) string
}

// PersonalAccessToken lets scripts authenticate as a user
type PersonalAccessToken struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Description   string
	ExpiresAt     time.Time
	EncodedSecret string
	CreatedAt     time.Time
}

// NewPersonalAccessToken creates a token and returns it with the raw secret.
// The raw secret is shown to the user once and never stored.
func NewPersonalAccessToken(userID uuid.UUID, description string, validFor time.Duration, encoder TokenEncoder) (*PersonalAccessToken, string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, "", shared.NewDomainError("INVALID_TOKEN", "Token description cannot be empty")
	}
	if validFor <= 0 || validFor > maxTokenValidDays*24*time.Hour {
		return nil, "", shared.NewDomainError("INVALID_TOKEN", "Token validity must be between 1 day and 365 days")
	}
	raw, err := generateRawToken()
	if err != nil {
		return nil, "", err
	}
	now := time.Now()
	return &PersonalAccessToken{
		ID:            uuid.New(),
		UserID:        userID,
		Description:   description,
		ExpiresAt:     now.Add(validFor),
		EncodedSecret: encoder.Encode(raw),
		CreatedAt:     now,
	}, raw, nil
}

// IsExpired reports whether the token can no longer be used
func (t *PersonalAccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func generateRawToken() (string, error) {
	buf := make([]byte, rawTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = rawTokenAlphabet[int(b)%len(rawTokenAlphabet)]
	}
	return string(buf), nil
}
