package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func human() Term {
	return Term{
		OntologyAbbreviation: "ncbitaxon",
		Label:                "Homo sapiens",
		Name:                 "NCBITaxon_9606",
		ClassIRI:             "http://purl.obolibrary.org/obo/NCBITaxon_9606",
	}
}

func TestParseOboID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    OboID
		wantErr bool
	}{
		{"colon form", "NCBITaxon:9606", OboID{"NCBITaxon", "9606"}, false},
		{"legacy underscore form", "NCBITaxon_9606", OboID{"NCBITaxon", "9606"}, false},
		{"empty", "  ", OboID{}, true},
		{"missing local id", "BTO:", OboID{}, true},
		{"no separator", "BTO0000089", OboID{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOboID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerm_FormatAndExtract(t *testing.T) {
	formatted := FormatTerm(human())
	assert.Equal(t, "Homo sapiens [NCBITaxon:9606]", formatted)

	curie, ok := ExtractCURIE(formatted)
	assert.True(t, ok)
	assert.Equal(t, "NCBITaxon:9606", curie)

	_, ok = ExtractCURIE("Homo sapiens")
	assert.False(t, ok)

	_, ok = ExtractCURIE("Homo sapiens []")
	assert.False(t, ok)
}

func TestTerm_Formatted(t *testing.T) {
	assert.Equal(t, "NCBITaxon:9606 (NCBI organismal classification)", human().Formatted())
}

func TestAppendDistinct(t *testing.T) {
	other := human()
	other.Label = "human"

	terms := AppendDistinct(nil, human(), other)
	assert.Len(t, terms, 1)
	assert.True(t, ContainsTerm(terms, other))
}

func TestCategory_IsValid(t *testing.T) {
	assert.True(t, CategorySpecies.IsValid())
	assert.False(t, Category("tissue").IsValid())
}
