// Package ontology holds ontology terms used to describe species, specimens,
// analytes and instruments.
package ontology

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// OboID is a compact identifier of the form idSpace:localId, e.g. NCBITaxon:9606
type OboID struct {
	IDSpace string `json:"id_space"`
	LocalID string `json:"local_id"`
}

// String renders the CURIE form
func (o OboID) String() string {
	return o.IDSpace + ":" + o.LocalID
}

// ParseOboID parses a CURIE. The underscore form (NCBITaxon_9606) is accepted
// for values stored before CURIEs were normalised.
func ParseOboID(id string) (OboID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return OboID{}, shared.NewDomainError("INVALID_OBO_ID", "OboId cannot be empty")
	}
	sep := ":"
	if !strings.Contains(id, sep) {
		sep = "_"
	}
	space, local, found := strings.Cut(id, sep)
	if !found || space == "" || local == "" {
		return OboID{}, shared.NewDomainError("INVALID_OBO_ID", fmt.Sprintf("Invalid OboId: %q", id))
	}
	return OboID{IDSpace: space, LocalID: local}, nil
}

// Term is a single class of an ontology. Two terms are the same when their
// class IRIs match.
type Term struct {
	OntologyAbbreviation string `json:"ontology"`
	OntologyVersion      string `json:"ontology_version"`
	OntologyIRI          string `json:"ontology_iri"`
	Label                string `json:"label"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	ClassIRI             string `json:"class_iri"`
}

// Equal reports whether both terms reference the same ontology class
func (t Term) Equal(other Term) bool {
	return t.ClassIRI == other.ClassIRI
}

// OboID returns the parsed compact identifier of the term
func (t Term) OboID() (OboID, error) {
	return ParseOboID(t.Name)
}

// CURIE returns the normalised CURIE, or the raw name if it cannot be parsed
func (t Term) CURIE() string {
	id, err := t.OboID()
	if err != nil {
		return t.Name
	}
	return id.String()
}

// Formatted renders "CURIE (Ontology name)"
func (t Term) Formatted() string {
	return fmt.Sprintf("%s (%s)", t.CURIE(), FindOntology(t.OntologyAbbreviation).Name)
}

// FormatTerm renders the label form used in sample sheets: "label [CURIE]"
func FormatTerm(t Term) string {
	return fmt.Sprintf("%s [%s]", t.Label, t.CURIE())
}

var curiePattern = regexp.MustCompile(`\[.*\]`)

// ExtractCURIE returns the CURIE between square brackets of a "label [CURIE]"
// value. ok is false when no bracketed part is present.
func ExtractCURIE(value string) (string, bool) {
	match := curiePattern.FindString(value)
	if match == "" {
		return "", false
	}
	curie := strings.TrimSpace(strings.Trim(match, "[]"))
	if curie == "" {
		return "", false
	}
	return curie, true
}

// ContainsTerm reports whether terms holds a term with the same class IRI
func ContainsTerm(terms []Term, term Term) bool {
	for _, t := range terms {
		if t.Equal(term) {
			return true
		}
	}
	return false
}

// AppendDistinct adds the given terms that are not already present
func AppendDistinct(terms []Term, add ...Term) []Term {
	for _, term := range add {
		if !ContainsTerm(terms, term) {
			terms = append(terms, term)
		}
	}
	return terms
}
