package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSalt = "0123456789abcdef"

func TestNewPBKDF2TokenEncoder(t *testing.T) {
	_, err := NewPBKDF2TokenEncoder("short", MinTokenIterations)
	assert.Error(t, err)

	_, err = NewPBKDF2TokenEncoder(testSalt, 1000)
	assert.Error(t, err)

	enc, err := NewPBKDF2TokenEncoder(testSalt, MinTokenIterations)
	require.NoError(t, err)
	assert.NotNil(t, enc)
}

func TestPBKDF2TokenEncoder(t *testing.T) {
	enc, err := NewPBKDF2TokenEncoder(testSalt, MinTokenIterations)
	require.NoError(t, err)

	encoded := enc.Encode("s3cr3t-token")
	parts := strings.Split(encoded, ":")
	require.Len(t, parts, 3)
	assert.Equal(t, "100000", parts[0])
	assert.Equal(t, "30313233343536373839616263646566", parts[1])
	assert.Len(t, parts[2], tokenKeyLength*2)

	assert.Equal(t, encoded, enc.Encode("s3cr3t-token"), "encoding is deterministic for a fixed salt")
	assert.NotEqual(t, encoded, enc.Encode("other-token"))

	other, err := NewPBKDF2TokenEncoder("fedcba9876543210", MinTokenIterations)
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other.Encode("s3cr3t-token"))
}
