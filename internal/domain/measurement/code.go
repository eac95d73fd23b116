// Package measurement contains genomics (NGS) and proteomics (PxP)
// measurements performed on samples.
package measurement

import (
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// Domain prefixes of measurement codes
const (
	PrefixNGS = "NGS"
	PrefixMS  = "MS"
)

// ErrInvalidMeasurementCode is returned for codes with an unknown prefix
var ErrInvalidMeasurementCode = shared.NewDomainError("INVALID_MEASUREMENT_CODE", "Invalid measurement code")

// Code identifies a measurement: domain prefix followed by the code of
// the first measured sample, e.g. NGSQ2AB12001AX
type Code struct {
	prefix string
	sample string
}

// NewNGSCode creates the code of a genomics measurement
func NewNGSCode(sampleCode string) Code {
	return Code{prefix: PrefixNGS, sample: strings.ToUpper(strings.TrimSpace(sampleCode))}
}

// NewMSCode creates the code of a proteomics measurement
func NewMSCode(sampleCode string) Code {
	return Code{prefix: PrefixMS, sample: strings.ToUpper(strings.TrimSpace(sampleCode))}
}

// ParseCode parses a measurement code
func ParseCode(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, prefix := range []string{PrefixNGS, PrefixMS} {
		if rest, ok := strings.CutPrefix(s, prefix); ok && rest != "" {
			return Code{prefix: prefix, sample: rest}, nil
		}
	}
	return Code{}, ErrInvalidMeasurementCode.Withf("Unknown measurement code: %s", s)
}

// String returns the full code
func (c Code) String() string {
	return c.prefix + c.sample
}

// IsNGS reports whether the code belongs to a genomics measurement
func (c Code) IsNGS() bool {
	return c.prefix == PrefixNGS
}

// IsMS reports whether the code belongs to a proteomics measurement
func (c Code) IsMS() bool {
	return c.prefix == PrefixMS
}

// SampleCode returns the code of the sample the measurement code was derived from
func (c Code) SampleCode() string {
	return c.sample
}
