package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qbic/datamanager/internal/domain/ontology"
	"go.uber.org/zap"
)

// DefaultTerminologyEndpoint is the public TIB terminology service API
const DefaultTerminologyEndpoint = "https://api.terminology.tib.eu/api"

// TerminologyClient searches the TIB terminology service. Results are
// restricted to ontology.RemoteWhitelist.
type TerminologyClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTerminologyClient creates a client for the terminology service at endpoint
func NewTerminologyClient(endpoint string, timeout time.Duration, logger *zap.Logger) *TerminologyClient {
	if endpoint == "" {
		endpoint = DefaultTerminologyEndpoint
	}
	return &TerminologyClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: newHTTPClient(timeout),
		logger:     logger,
	}
}

type tibTerm struct {
	IRI          string   `json:"iri"`
	Label        string   `json:"label"`
	OboID        string   `json:"obo_id"`
	ShortForm    string   `json:"short_form"`
	OntologyName string   `json:"ontology_name"`
	Description  []string `json:"description"`
}

type tibResponse struct {
	Response struct {
		Docs []tibTerm `json:"docs"`
	} `json:"response"`
}

func (t tibTerm) toTerm() ontology.Term {
	description := ""
	if len(t.Description) > 0 {
		description = t.Description[0]
	}
	name := t.OboID
	if name == "" {
		name = t.ShortForm
	}
	return ontology.Term{
		OntologyAbbreviation: t.OntologyName,
		Label:                t.Label,
		Name:                 name,
		Description:          description,
		ClassIRI:             t.IRI,
	}
}

// Search runs a full text search. Blank queries return no terms without
// calling the service.
func (c *TerminologyClient) Search(ctx context.Context, query string, offset, limit int) ([]ontology.Term, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []ontology.Term{}, nil
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("rows", strconv.Itoa(limit))
	params.Set("start", strconv.Itoa(offset))
	params.Set("ontology", strings.Join(ontology.RemoteWhitelist(), ","))
	terms, status, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, status)
	}
	return terms, nil
}

// FindByCURIE searches for the exact obo id. The underscore form is
// converted to the colon form the service indexes.
func (c *TerminologyClient) FindByCURIE(ctx context.Context, curie string) (*ontology.Term, error) {
	curie = strings.TrimSpace(curie)
	if curie == "" {
		return nil, nil
	}
	if id, err := ontology.ParseOboID(curie); err == nil {
		curie = id.String()
	}
	params := url.Values{}
	params.Set("q", curie)
	params.Set("queryFields", "obo_id")
	params.Set("exact", "true")
	params.Set("ontology", strings.Join(ontology.RemoteWhitelist(), ","))
	terms, status, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, nil
	case status != http.StatusOK:
		c.logger.Error("Terminology lookup failed", zap.String("curie", curie), zap.Int("status", status))
		return nil, nil
	case len(terms) == 0:
		return nil, nil
	}
	return &terms[0], nil
}

func (c *TerminologyClient) search(ctx context.Context, params url.Values) ([]ontology.Term, int, error) {
	body, status, err := getJSON(ctx, c.httpClient, c.endpoint+"/search?"+params.Encode())
	if err != nil {
		return nil, status, err
	}
	if status != http.StatusOK {
		return nil, status, nil
	}
	var resp tibResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, status, fmt.Errorf("%w: cannot process terminology response: %v", ErrRequestFailed, err)
	}
	terms := make([]ontology.Term, 0, len(resp.Response.Docs))
	for _, doc := range resp.Response.Docs {
		terms = append(terms, doc.toTerm())
	}
	return terms, status, nil
}
