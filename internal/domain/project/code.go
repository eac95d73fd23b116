// Package project contains the Project aggregate and its value objects.
package project

import (
	"math/rand/v2"
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// CodeLength is the number of characters of a project code
const CodeLength = 6

const (
	codePrefix  = "Q2"
	codeLength  = CodeLength
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWX"
	codeDigits  = "0123456789"
)

var codeBlacklist = []string{"FUCK", "SHIT"}

// ErrInvalidProjectCode is returned for malformed project codes
var ErrInvalidProjectCode = shared.NewDomainError("INVALID_PROJECT_CODE", "Invalid project code")

// Code is a short human readable project identifier, e.g. Q2AB12
type Code struct {
	value string
}

// String returns the code value
func (c Code) String() string {
	return c.value
}

// IsZero reports whether the code is unset
func (c Code) IsZero() bool {
	return c.value == ""
}

// NewRandomCode generates a code from the allowed alphabet, skipping
// blacklisted combinations
func NewRandomCode() Code {
	for {
		var sb strings.Builder
		sb.WriteString(codePrefix)
		for i := 0; i < codeLength-len(codePrefix); i++ {
			if rand.IntN(2) == 0 {
				sb.WriteByte(codeLetters[rand.IntN(len(codeLetters))])
			} else {
				sb.WriteByte(codeDigits[rand.IntN(len(codeDigits))])
			}
		}
		value := sb.String()
		if !containsBlacklisted(value[1:]) {
			return Code{value: value}
		}
	}
}

// ParseCode validates and normalises a project code
func ParseCode(s string) (Code, error) {
	value := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(value, codePrefix) {
		return Code{}, ErrInvalidProjectCode.Withf("Project code must start with %s", codePrefix)
	}
	if len(value) != codeLength {
		return Code{}, ErrInvalidProjectCode.Withf("Project code must have 6 characters")
	}
	for _, r := range value[len(codePrefix):] {
		if !strings.ContainsRune(codeLetters, r) && !strings.ContainsRune(codeDigits, r) {
			return Code{}, ErrInvalidProjectCode.Withf("Project code contains invalid character: %s", string(r))
		}
	}
	if containsBlacklisted(value[1:]) {
		return Code{}, ErrInvalidProjectCode.Withf("Project code contains a blacklisted word")
	}
	return Code{value: value}, nil
}

// MustParseCode is ParseCode for trusted values; it panics on error
func MustParseCode(s string) Code {
	c, err := ParseCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

func containsBlacklisted(s string) bool {
	for _, word := range codeBlacklist {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
