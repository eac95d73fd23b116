package lookup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFinder struct {
	orgs  map[string]measurement.Organisation
	calls int
	err   error
}

func (f *stubFinder) FindOrganisation(_ context.Context, rorID string) (measurement.Organisation, bool, error) {
	f.calls++
	if f.err != nil {
		return measurement.Organisation{}, false, f.err
	}
	org, ok := f.orgs[rorID]
	return org, ok, nil
}

func TestOrganisationLookup_Resolve(t *testing.T) {
	tuebingen := measurement.Organisation{IRI: "https://ror.org/03a1kwz48", Label: "University of Tübingen"}
	finder := &stubFinder{orgs: map[string]measurement.Organisation{"03a1kwz48": tuebingen}}
	lookup := NewOrganisationLookup(finder, cache.NewInMemoryOrganisationCache(0), zap.NewNop())
	ctx := context.Background()

	t.Run("resolves and caches", func(t *testing.T) {
		org, err := lookup.Resolve(ctx, "https://ror.org/03a1kwz48")
		require.NoError(t, err)
		assert.Equal(t, tuebingen, org)

		org, err = lookup.Resolve(ctx, "03a1kwz48")
		require.NoError(t, err)
		assert.Equal(t, tuebingen, org)
		assert.Equal(t, 1, finder.calls)
	})

	t.Run("unknown id", func(t *testing.T) {
		ok, err := lookup.Exists(ctx, "https://ror.org/00v34f693")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("not a ror id", func(t *testing.T) {
		_, err := lookup.Resolve(ctx, "https://example.org/university")
		assert.Equal(t, ErrUnknownOrganisation.Code, shared.ErrorCode(err))
	})

	t.Run("registry outage is an error", func(t *testing.T) {
		failing := NewOrganisationLookup(&stubFinder{err: errors.New("down")}, nil, zap.NewNop())
		_, err := failing.Exists(ctx, "03a1kwz48")
		assert.Error(t, err)
	})
}

type stubTerms struct {
	terms []ontology.Term
}

func (s *stubTerms) Search(_ context.Context, query string, _ ontology.Category, _, limit int) ([]ontology.Term, error) {
	var out []ontology.Term
	for _, t := range s.terms {
		if strings.Contains(strings.ToLower(t.Label), strings.ToLower(query)) && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTerms) FindByCURIE(_ context.Context, curie string) (*ontology.Term, error) {
	id, err := ontology.ParseOboID(curie)
	if err != nil {
		return nil, err
	}
	for _, t := range s.terms {
		if t.Name == id.String() {
			term := t
			return &term, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubTerms) Save(_ context.Context, _ ontology.Category, term ontology.Term) error {
	s.terms = append(s.terms, term)
	return nil
}

type stubRemote struct {
	terms []ontology.Term
	err   error
}

func (r *stubRemote) Search(context.Context, string, int, int) ([]ontology.Term, error) {
	return r.terms, r.err
}

func (r *stubRemote) FindByCURIE(_ context.Context, curie string) (*ontology.Term, error) {
	for _, t := range r.terms {
		if t.Name == curie {
			term := t
			return &term, nil
		}
	}
	return nil, nil
}

func TestOntologyLookup(t *testing.T) {
	human := ontology.Term{Label: "Homo sapiens", Name: "NCBITaxon:9606", ClassIRI: "http://purl.obolibrary.org/obo/NCBITaxon_9606"}
	blood := ontology.Term{Label: "blood", Name: "BTO:0000089", ClassIRI: "http://purl.obolibrary.org/obo/BTO_0000089"}
	bloodPlasma := ontology.Term{Label: "blood plasma", Name: "BTO:0000131", ClassIRI: "http://purl.obolibrary.org/obo/BTO_0000131"}
	ctx := context.Background()

	local := &stubTerms{terms: []ontology.Term{human, blood}}
	remote := &stubRemote{terms: []ontology.Term{blood, bloodPlasma}}
	lookup := NewOntologyLookup(local, remote, zap.NewNop())

	t.Run("remote fills the page without duplicates", func(t *testing.T) {
		terms, err := lookup.Search(ctx, "blood", "", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []ontology.Term{blood, bloodPlasma}, terms)
	})

	t.Run("category searches stay local", func(t *testing.T) {
		terms, err := lookup.Search(ctx, "blood", ontology.CategorySpecimen, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []ontology.Term{blood}, terms)
	})

	t.Run("remote failure falls back to local terms", func(t *testing.T) {
		failing := NewOntologyLookup(local, &stubRemote{err: errors.New("timeout")}, zap.NewNop())
		terms, err := failing.Search(ctx, "blood", "", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []ontology.Term{blood}, terms)
	})

	t.Run("resolves formatted terms", func(t *testing.T) {
		term, err := lookup.Resolve(ctx, "Homo sapiens [NCBITaxon_9606]")
		require.NoError(t, err)
		require.NotNil(t, term)
		assert.Equal(t, human.ClassIRI, term.ClassIRI)

		term, err = lookup.Resolve(ctx, "blood plasma [BTO:0000131]")
		require.NoError(t, err)
		require.NotNil(t, term)
		assert.Equal(t, bloodPlasma.Label, term.Label)

		term, err = lookup.Resolve(ctx, "nothing [XYZ:1]")
		require.NoError(t, err)
		assert.Nil(t, term)
	})
}
