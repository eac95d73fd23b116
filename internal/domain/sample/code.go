// Package sample contains samples, sample batches and quality control
// records of a project.
package sample

import (
	"fmt"
	"strings"

	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/shared"
)

const (
	samplesPerLetter = 999
	checksumAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWX"
	maxLetter        = 'Z'
	codeLength       = project.CodeLength + 5
)

// ErrInvalidSampleCode is returned for malformed sample codes
var ErrInvalidSampleCode = shared.NewDomainError("INVALID_SAMPLE_CODE", "Invalid sample code")

// Code identifies a sample within the whole system, e.g. Q2AB12001AX:
// project code, three digit counter, block letter and checksum
type Code string

// String returns the code value
func (c Code) String() string {
	return string(c)
}

// NewCode builds the code of the n-th sample (1-based) of a project. The
// counter runs 001..999 per block letter, starting at A.
func NewCode(projectCode project.Code, n int) (Code, error) {
	if n < 1 {
		return "", ErrInvalidSampleCode.Withf("Sample number must be positive")
	}
	block := (n - 1) / samplesPerLetter
	counter := (n-1)%samplesPerLetter + 1
	letter := rune('A' + block)
	if letter > maxLetter {
		return "", ErrInvalidSampleCode.Withf("Sample code space of project exhausted")
	}
	base := fmt.Sprintf("%s%03d%c", projectCode, counter, letter)
	return Code(base + string(checksum(base))), nil
}

// ParseCode validates a sample code as NewCode builds it: project code,
// counter 001..999, block letter A..Z and checksum
func ParseCode(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	projectPart := min(len(s), project.CodeLength)
	if _, err := project.ParseCode(s[:projectPart]); err != nil {
		return "", ErrInvalidSampleCode.Withf("Invalid project code in sample code: %s", s)
	}
	if len(s) != codeLength {
		return "", ErrInvalidSampleCode.Withf("Sample code must have %d characters: %s", codeLength, s)
	}
	counter := s[project.CodeLength : project.CodeLength+3]
	if strings.Trim(counter, "0123456789") != "" || counter == "000" {
		return "", ErrInvalidSampleCode.Withf("Invalid sample counter in sample code: %s", s)
	}
	if letter := s[codeLength-2]; letter < 'A' || letter > maxLetter {
		return "", ErrInvalidSampleCode.Withf("Invalid block letter in sample code: %s", s)
	}
	base, sum := s[:codeLength-1], s[codeLength-1]
	if checksum(base) != sum {
		return "", ErrInvalidSampleCode.Withf("Invalid sample code checksum: %s", s)
	}
	return Code(s), nil
}

// checksum is the weighted sum of the character values mod 34, mapped
// onto digits and the letters A-X
func checksum(s string) byte {
	sum := 0
	for i, r := range s {
		sum += charValue(r) * (i + 1)
	}
	return checksumAlphabet[sum%len(checksumAlphabet)]
}

func charValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	default:
		return int(r)
	}
}
