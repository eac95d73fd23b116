package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps the tests quick; the format is the same as the default
var fastPolicy = PasswordPolicy{Iterations: 1000, SaltLength: PasswordSaltLength, KeyLength: PasswordKeyLength}

func TestRegister(t *testing.T) {
	t.Run("creates pending user", func(t *testing.T) {
		user, err := Register("Jane Doe", "Jane@Example.org", "jdoe", "secret-password", fastPolicy)
		require.NoError(t, err)

		assert.Equal(t, "jane@example.org", user.Email)
		assert.Equal(t, UserStatusPending, user.Status)
		assert.False(t, user.IsActive())
		assert.True(t, user.HasAuthority(AuthorityUser))
		assert.False(t, user.HasAuthority(AuthorityAdmin))
		assert.Equal(t, user.CreatedAt, user.RegisteredAt)

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*UserRegisteredEvent)
		assert.True(t, ok)
	})

	t.Run("fails with short password", func(t *testing.T) {
		_, err := Register("Jane Doe", "jane@example.org", "jdoe", "short", fastPolicy)
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := Register("Jane Doe", "not-an-email", "jdoe", "secret-password", fastPolicy)
		require.Error(t, err)
	})

	t.Run("fails with invalid username", func(t *testing.T) {
		_, err := Register("Jane Doe", "jane@example.org", "jd", "secret-password", fastPolicy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 3 characters")

		_, err = Register("Jane Doe", "jane@example.org", "jane doe", "secret-password", fastPolicy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can only contain")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := Register(" ", "jane@example.org", "jdoe", "secret-password", fastPolicy)
		require.Error(t, err)
	})
}

func TestUser_Lifecycle(t *testing.T) {
	user, err := Register("Jane Doe", "jane@example.org", "jdoe", "secret-password", fastPolicy)
	require.NoError(t, err)
	user.ClearDomainEvents()

	require.Error(t, user.RequestPasswordReset())

	require.NoError(t, user.ConfirmEmail())
	require.NoError(t, user.ConfirmEmail())
	assert.True(t, user.IsActive())
	require.Len(t, user.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeUserActivated, user.GetDomainEvents()[0].EventType())

	require.NoError(t, user.RequestPasswordReset())
	assert.Equal(t, EventTypePasswordResetRequested, user.GetDomainEvents()[1].EventType())

	require.NoError(t, user.SetPassword("another-password", fastPolicy))
	assert.True(t, user.VerifyPassword("another-password", fastPolicy))
	assert.False(t, user.VerifyPassword("secret-password", fastPolicy))

	require.NoError(t, user.ChangeFullName("Jane Roe"))
	assert.Equal(t, "Jane Roe", user.FullName)

	user.GrantAuthority(AuthorityAdmin)
	user.GrantAuthority(AuthorityAdmin)
	assert.Len(t, user.Authorities, 2)

	require.NoError(t, user.Deactivate())
	require.Error(t, user.Deactivate())
	require.Error(t, user.ConfirmEmail())
}

func TestPasswordPolicy(t *testing.T) {
	encrypted, err := fastPolicy.Encrypt("secret-password")
	require.NoError(t, err)

	parts := strings.Split(encrypted, ":")
	require.Len(t, parts, 3)
	assert.Equal(t, "1000", parts[0])
	assert.Len(t, parts[1], PasswordSaltLength*2)
	assert.Len(t, parts[2], PasswordKeyLength*2)

	assert.True(t, fastPolicy.Matches("secret-password", encrypted))
	assert.True(t, DefaultPasswordPolicy().Matches("secret-password", encrypted))
	assert.False(t, fastPolicy.Matches("wrong-password", encrypted))
	assert.False(t, fastPolicy.Matches("secret-password", "garbage"))
	assert.False(t, fastPolicy.Matches("secret-password", "x:00:00"))

	other, err := fastPolicy.Encrypt("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, other)
}

type plainEncoder struct{}

func (plainEncoder) Encode(raw string) string { return "enc:" + raw }

func TestNewPersonalAccessToken(t *testing.T) {
	userID := uuid.New()
	token, raw, err := NewPersonalAccessToken(userID, "ci pipeline", 30*24*time.Hour, plainEncoder{})
	require.NoError(t, err)

	assert.Len(t, raw, 32)
	assert.Equal(t, "enc:"+raw, token.EncodedSecret)
	assert.False(t, token.IsExpired(time.Now()))
	assert.True(t, token.IsExpired(token.ExpiresAt))

	_, _, err = NewPersonalAccessToken(userID, "", time.Hour, plainEncoder{})
	require.Error(t, err)
	_, _, err = NewPersonalAccessToken(userID, "too long", 400*24*time.Hour, plainEncoder{})
	require.Error(t, err)
}

func TestUserFilter(t *testing.T) {
	f := NewUserFilter().WithKeyword("jane").WithStatus(UserStatusActive)
	assert.Equal(t, "jane", f.Keyword)
	require.NotNil(t, f.Status)
	assert.Equal(t, 0, f.Offset())
	f.Page, f.PageSize = 3, 500
	assert.Equal(t, 100, f.Limit())
	assert.Equal(t, 200, f.Offset())
}
