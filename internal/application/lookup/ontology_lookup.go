package lookup

import (
	"context"
	"errors"
	"strings"

	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// TerminologyService is a remote ontology search
type TerminologyService interface {
	Search(ctx context.Context, query string, offset, limit int) ([]ontology.Term, error)
	FindByCURIE(ctx context.Context, curie string) (*ontology.Term, error)
}

// OntologyLookup searches curated terms and, when a remote service is
// configured, the terminology service
type OntologyLookup struct {
	terms  ontology.TermRepository
	remote TerminologyService
	logger *zap.Logger
}

// NewOntologyLookup creates an OntologyLookup. remote may be nil.
func NewOntologyLookup(terms ontology.TermRepository, remote TerminologyService, logger *zap.Logger) *OntologyLookup {
	return &OntologyLookup{terms: terms, remote: remote, logger: logger}
}

// Search returns up to limit terms for query. Curated terms come first;
// remote results fill the page and are skipped for a specific category.
func (l *OntologyLookup) Search(ctx context.Context, query string, category ontology.Category, offset, limit int) ([]ontology.Term, error) {
	query = norm.NFC.String(strings.TrimSpace(query))
	if limit <= 0 {
		limit = 20
	}
	local, err := l.terms.Search(ctx, query, category, offset, limit)
	if err != nil {
		return nil, err
	}
	if l.remote == nil || category != "" || query == "" || len(local) >= limit {
		return local, nil
	}

	remote, err := l.remote.Search(ctx, query, offset, limit)
	if err != nil {
		// curated results are still useful when the service is down
		l.logger.Warn("Remote terminology search failed", zap.String("query", query), zap.Error(err))
		return local, nil
	}
	result := ontology.AppendDistinct(local, remote...)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// FindByCURIE finds a term in the curated store, then remotely.
// A nil term without error means the CURIE is unknown.
func (l *OntologyLookup) FindByCURIE(ctx context.Context, curie string) (*ontology.Term, error) {
	if _, err := ontology.ParseOboID(curie); err != nil {
		return nil, nil
	}
	term, err := l.terms.FindByCURIE(ctx, curie)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if term != nil || l.remote == nil {
		return term, nil
	}
	return l.remote.FindByCURIE(ctx, curie)
}

// Resolve parses a "label [CURIE]" string or a bare CURIE and finds the term
func (l *OntologyLookup) Resolve(ctx context.Context, value string) (*ontology.Term, error) {
	curie, ok := ontology.ExtractCURIE(value)
	if !ok {
		curie = strings.TrimSpace(value)
	}
	if curie == "" {
		return nil, nil
	}
	return l.FindByCURIE(ctx, curie)
}
