package offer

import (
	"context"
)

// OfferRepository defines the interface for offer persistence
type OfferRepository interface {
	// FindByCode finds an offer by its code
	FindByCode(ctx context.Context, code string) (*Offer, error)

	// Search finds offers whose code or project title contains the term
	Search(ctx context.Context, term string, offset, limit int) ([]Preview, error)

	// Save creates or updates an offer
	Save(ctx context.Context, offer *Offer) error
}
