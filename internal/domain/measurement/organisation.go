package measurement

import (
	"regexp"
	"strings"
)

var (
	rorIRIPattern = regexp.MustCompile(`^https://ror.org/0[a-z|0-9]{6}[0-9]{2}$`)
	rorIDPattern  = regexp.MustCompile(`0[a-z|0-9]{6}[0-9]{2}$`)
)

// Organisation is a research organisation identified by its ROR IRI
type Organisation struct {
	IRI   string `json:"iri"`
	Label string `json:"label"`
}

// IsRORIRI reports whether s is a complete ROR IRI
func IsRORIRI(s string) bool {
	return rorIRIPattern.MatchString(strings.TrimSpace(s))
}

// ExtractRORID returns the ROR id at the end of an IRI or bare id
func ExtractRORID(s string) (string, bool) {
	id := rorIDPattern.FindString(strings.TrimSpace(s))
	return id, id != ""
}
