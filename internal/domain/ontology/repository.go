package ontology

import "context"

// Category groups the terms offered for a sample property
type Category string

const (
	CategorySpecies    Category = "species"
	CategorySpecimen   Category = "specimen"
	CategoryAnalyte    Category = "analyte"
	CategoryInstrument Category = "instrument"
)

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategorySpecies, CategorySpecimen, CategoryAnalyte, CategoryInstrument:
		return true
	}
	return false
}

// TermRepository persists curated ontology terms
type TermRepository interface {
	// Search finds terms whose label or CURIE contains query, optionally limited to a category
	Search(ctx context.Context, query string, category Category, offset, limit int) ([]Term, error)
	// FindByCURIE finds a term by its CURIE in either separator form
	FindByCURIE(ctx context.Context, curie string) (*Term, error)
	// Save stores a term under a category, replacing a term with the same class IRI
	Save(ctx context.Context, category Category, term Term) error
}
