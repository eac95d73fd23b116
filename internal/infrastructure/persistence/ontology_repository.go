package persistence

import (
	"context"
	"strings"

	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTermRepository implements TermRepository on the ontology_terms table
type GormTermRepository struct {
	db *gorm.DB
}

// NewGormTermRepository creates a new GormTermRepository
func NewGormTermRepository(db *gorm.DB) *GormTermRepository {
	return &GormTermRepository{db: db}
}

// Search finds terms whose label or CURIE contains query. An empty category
// searches all categories.
func (r *GormTermRepository) Search(ctx context.Context, query string, category ontology.Category, offset, limit int) ([]ontology.Term, error) {
	q := r.db.WithContext(ctx).Model(&models.OntologyTermModel{})
	if category != "" {
		q = q.Where("category = ?", string(category))
	}
	if strings.TrimSpace(query) != "" {
		pattern := likePattern(query)
		q = q.Where(`LOWER(label) LIKE ? ESCAPE '\' OR LOWER(curie) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []models.OntologyTermModel
	if err := q.Order("label ASC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	terms := make([]ontology.Term, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i := range rows {
		if seen[rows[i].ClassIRI] {
			continue
		}
		seen[rows[i].ClassIRI] = true
		terms = append(terms, rows[i].ToDomain())
	}
	return terms, nil
}

// FindByCURIE finds a term by its CURIE in either separator form
func (r *GormTermRepository) FindByCURIE(ctx context.Context, curie string) (*ontology.Term, error) {
	id, err := ontology.ParseOboID(curie)
	if err != nil {
		return nil, err
	}
	var model models.OntologyTermModel
	if err := r.db.WithContext(ctx).Where("curie = ?", id.String()).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	term := model.ToDomain()
	return &term, nil
}

// Save stores a term under a category, replacing a term with the same class IRI
func (r *GormTermRepository) Save(ctx context.Context, category ontology.Category, term ontology.Term) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "category"}, {Name: "class_iri"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"curie", "ontology_abbreviation", "ontology_version", "ontology_iri",
				"label", "name", "description",
			}),
		}).
		Create(models.OntologyTermModelFromDomain(category, term)).Error
}
