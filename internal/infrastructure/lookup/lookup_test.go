package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRORClient_FindOrganisation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/organizations/00v34f693":
			_, _ = w.Write([]byte(`{"id":"https://ror.org/00v34f693","name":"University of Tübingen"}`))
		case "/organizations/03a1kwz48":
			_, _ = w.Write([]byte(`{"id":"https://ror.org/03a1kwz48","names":[{"value":"EKUT","types":["acronym"]},{"value":"Eberhard Karls University","types":["ror_display","label"]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewRORClient(server.URL, time.Second, zap.NewNop())

	org, found, err := client.FindOrganisation(context.Background(), "00v34f693")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "https://ror.org/00v34f693", org.IRI)
	assert.Equal(t, "University of Tübingen", org.Label)

	org, found, err = client.FindOrganisation(context.Background(), "03a1kwz48")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Eberhard Karls University", org.Label)

	_, found, err = client.FindOrganisation(context.Background(), "0unknown00")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRORClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewRORClient(server.URL, time.Second, zap.NewNop())
	_, _, err := client.FindOrganisation(context.Background(), "00v34f693")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestTerminologyClient(t *testing.T) {
	var lastQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"response":{"docs":[{"iri":"http://purl.obolibrary.org/obo/BTO_0000089","label":"blood","obo_id":"BTO:0000089","short_form":"BTO_0000089","ontology_name":"bto","description":["A liquid tissue"]}]}}`))
	}))
	defer server.Close()

	client := NewTerminologyClient(server.URL, time.Second, zap.NewNop())

	t.Run("search", func(t *testing.T) {
		terms, err := client.Search(context.Background(), "blood", 10, 5)
		require.NoError(t, err)
		require.Len(t, terms, 1)
		assert.Equal(t, "BTO:0000089", terms[0].Name)
		assert.Equal(t, "A liquid tissue", terms[0].Description)
		assert.Equal(t, "bto", terms[0].OntologyAbbreviation)
		assert.Equal(t, []string{"5"}, lastQuery["rows"])
		assert.Equal(t, []string{"10"}, lastQuery["start"])
		assert.Contains(t, lastQuery["ontology"][0], "chebi")
	})

	t.Run("blank search skips the service", func(t *testing.T) {
		lastQuery = nil
		terms, err := client.Search(context.Background(), "  ", 0, 5)
		require.NoError(t, err)
		assert.Empty(t, terms)
		assert.Nil(t, lastQuery)
	})

	t.Run("exact curie lookup normalises separator", func(t *testing.T) {
		term, err := client.FindByCURIE(context.Background(), "BTO_0000089")
		require.NoError(t, err)
		require.NotNil(t, term)
		assert.Equal(t, []string{"BTO:0000089"}, lastQuery["q"])
		assert.Equal(t, []string{"obo_id"}, lastQuery["queryFields"])
	})
}
