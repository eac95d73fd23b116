// Package offer contains offers made to customers before a project starts.
package offer

import (
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Offer is a priced proposal for a project
type Offer struct {
	shared.BaseEntity
	Code               string
	ProjectTitle       string
	ProjectObjective   string
	ExperimentalDesign string
	NetPrice           valueobject.Money
	VAT                decimal.Decimal
	DocumentKey        string
}

// NewOffer creates an offer
func NewOffer(code, title, objective string, netPrice valueobject.Money, vat decimal.Decimal) (*Offer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_OFFER", "Offer code must not be empty")
	}
	if vat.IsNegative() || vat.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_OFFER", "VAT must be a rate between 0 and 1")
	}
	if netPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_OFFER", "Net price must not be negative")
	}
	return &Offer{
		BaseEntity:       shared.NewBaseEntity(),
		Code:             code,
		ProjectTitle:     strings.TrimSpace(title),
		ProjectObjective: strings.TrimSpace(objective),
		NetPrice:         netPrice,
		VAT:              vat,
	}, nil
}

// TotalPrice is the net price including VAT
func (o *Offer) TotalPrice() valueobject.Money {
	return o.NetPrice.WithRate(o.VAT).Round(2)
}

// AttachDocument records where the offer document is stored
func (o *Offer) AttachDocument(key string) {
	o.DocumentKey = key
	o.Touch()
}

// Preview is the summary listed when searching offers
type Preview struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	ProjectTitle string    `json:"project_title"`
}
