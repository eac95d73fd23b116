package persistence

import (
	"context"
	"strings"

	"github.com/qbic/datamanager/internal/domain/offer"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOfferRepository implements OfferRepository using GORM
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a new GormOfferRepository
func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// FindByCode finds an offer by its code
func (r *GormOfferRepository) FindByCode(ctx context.Context, code string) (*offer.Offer, error) {
	var model models.OfferModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", strings.TrimSpace(code)).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Search finds offers whose code or project title contains the term
func (r *GormOfferRepository) Search(ctx context.Context, term string, offset, limit int) ([]offer.Preview, error) {
	query := r.db.WithContext(ctx).Model(&models.OfferModel{})
	if strings.TrimSpace(term) != "" {
		pattern := likePattern(term)
		query = query.Where(`LOWER(code) LIKE ? ESCAPE '\' OR LOWER(project_title) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if limit <= 0 {
		limit = 20
	}
	previews := []offer.Preview{}
	err := query.Select("id", "code", "project_title").
		Order("code ASC").
		Offset(offset).
		Limit(limit).
		Scan(&previews).Error
	return previews, err
}

// Save creates or updates an offer
func (r *GormOfferRepository) Save(ctx context.Context, o *offer.Offer) error {
	return translateError(r.db.WithContext(ctx).Save(models.OfferModelFromDomain(o)).Error)
}
