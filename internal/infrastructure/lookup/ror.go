package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/qbic/datamanager/internal/domain/measurement"
	"go.uber.org/zap"
)

// DefaultROREndpoint is the public ROR API
const DefaultROREndpoint = "https://api.ror.org"

// RORClient resolves organisations from the Research Organization Registry
type RORClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRORClient creates a client for the ROR API at endpoint
func NewRORClient(endpoint string, timeout time.Duration, logger *zap.Logger) *RORClient {
	if endpoint == "" {
		endpoint = DefaultROREndpoint
	}
	return &RORClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: newHTTPClient(timeout),
		logger:     logger,
	}
}

type rorEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Names []struct {
		Value string   `json:"value"`
		Types []string `json:"types"`
	} `json:"names"`
}

// displayName supports both the v1 (name) and v2 (names) response shapes
func (e rorEntry) displayName() string {
	if e.Name != "" {
		return e.Name
	}
	for _, n := range e.Names {
		for _, t := range n.Types {
			if t == "ror_display" {
				return n.Value
			}
		}
	}
	if len(e.Names) > 0 {
		return e.Names[0].Value
	}
	return ""
}

// FindOrganisation looks up a ROR id such as 00v34f693. found is false when
// the registry does not know the id.
func (c *RORClient) FindOrganisation(ctx context.Context, rorID string) (org measurement.Organisation, found bool, err error) {
	body, status, err := getJSON(ctx, c.httpClient, c.endpoint+"/organizations/"+url.PathEscape(rorID))
	if err != nil {
		return measurement.Organisation{}, false, err
	}
	if status != http.StatusOK {
		c.logger.Warn("Organisation ROR id not found",
			zap.String("ror_id", rorID),
			zap.Int("status", status))
		return measurement.Organisation{}, false, nil
	}

	var entry rorEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return measurement.Organisation{}, false, fmt.Errorf("%w: invalid ROR response: %v", ErrRequestFailed, err)
	}
	iri := entry.ID
	if iri == "" {
		iri = "https://ror.org/" + rorID
	}
	return measurement.Organisation{IRI: iri, Label: entry.displayName()}, true, nil
}
