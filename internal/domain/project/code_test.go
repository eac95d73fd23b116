package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := NewRandomCode()
		parsed, err := ParseCode(code.String())
		require.NoError(t, err, code.String())
		assert.Equal(t, code, parsed)
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "valid", input: "Q2AB12", want: "Q2AB12"},
		{name: "lower case is normalised", input: " q2ab12 ", want: "Q2AB12"},
		{name: "wrong prefix", input: "Q3AB12", wantErr: "must start with Q2"},
		{name: "too short", input: "Q2AB1", wantErr: "6 characters"},
		{name: "too long", input: "Q2AB123", wantErr: "6 characters"},
		{name: "letter outside alphabet", input: "Q2ABYZ", wantErr: "invalid character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := ParseCode(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidProjectCode)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, code.String())
		})
	}
}

func TestContainsBlacklisted(t *testing.T) {
	assert.True(t, containsBlacklisted("2SHIT"))
	assert.False(t, containsBlacklisted("2AB12"))
	assert.False(t, strings.Contains(codeLetters, "Y"))
}
