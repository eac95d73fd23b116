package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/qbic/datamanager/internal/domain/identity"
	"golang.org/x/crypto/pbkdf2"
)

const tokenKeyLength = 32

// Minimum strength of the token encoder settings
const (
	MinTokenSaltLength = 16
	MinTokenIterations = 100000
)

// PBKDF2TokenEncoder hashes personal access tokens with a configured salt.
// Encoded values have the form "<iterations>:<saltHex>:<hashHex>". The
// encoding is deterministic so tokens are looked up by their encoded value;
// changing salt or iterations invalidates every issued token.
type PBKDF2TokenEncoder struct {
	salt       []byte
	iterations int
}

// NewPBKDF2TokenEncoder validates the settings and creates an encoder
func NewPBKDF2TokenEncoder(salt string, iterations int) (*PBKDF2TokenEncoder, error) {
	if len(salt) < MinTokenSaltLength {
		return nil, fmt.Errorf("token salt must have at least %d bytes", MinTokenSaltLength)
	}
	if iterations < MinTokenIterations {
		return nil, fmt.Errorf("token iterations must be at least %d", MinTokenIterations)
	}
	return &PBKDF2TokenEncoder{salt: []byte(salt), iterations: iterations}, nil
}

// Encode hashes a raw token with the configured parameters
func (e *PBKDF2TokenEncoder) Encode(raw string) string {
	hash := pbkdf2.Key([]byte(raw), e.salt, e.iterations, tokenKeyLength, sha256.New)
	return fmt.Sprintf("%d:%s:%s", e.iterations, hex.EncodeToString(e.salt), hex.EncodeToString(hash))
}

var _ identity.TokenEncoder = (*PBKDF2TokenEncoder)(nil)
