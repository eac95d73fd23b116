package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
	"golang.org/x/crypto/pbkdf2"
)

// Password policy defaults
const (
	PasswordIterations = 100000
	PasswordSaltLength = 20
	PasswordKeyLength  = 32
	PasswordMinLength  = 8
)

// ErrInvalidPassword is returned for passwords that violate the policy
var ErrInvalidPassword = shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")

// PasswordPolicy encrypts passwords with PBKDF2-HMAC-SHA256. Encrypted
// values have the form "<iterations>:<saltHex>:<hashHex>".
type PasswordPolicy struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// DefaultPasswordPolicy returns the policy used for user passwords
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		Iterations: PasswordIterations,
		SaltLength: PasswordSaltLength,
		KeyLength:  PasswordKeyLength,
	}
}

// Encrypt hashes a raw password with a fresh random salt
func (p PasswordPolicy) Encrypt(raw string) (string, error) {
	if len([]rune(raw)) < PasswordMinLength {
		return "", ErrInvalidPassword
	}
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hash := pbkdf2.Key([]byte(raw), salt, p.Iterations, p.KeyLength, sha256.New)
	return fmt.Sprintf("%d:%s:%s", p.Iterations, hex.EncodeToString(salt), hex.EncodeToString(hash)), nil
}

// Matches reports whether raw matches an encrypted password. The
// iteration count stored with the hash is used.
func (p PasswordPolicy) Matches(raw, encrypted string) bool {
	parts := strings.Split(encrypted, ":")
	if len(parts) != 3 {
		return false
	}
	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	actual := pbkdf2.Key([]byte(raw), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(actual, expected) == 1
}
