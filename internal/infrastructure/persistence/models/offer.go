package models

import (
	"github.com/qbic/datamanager/internal/domain/offer"
	"github.com/qbic/datamanager/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OfferModel is the persistence model for offers
type OfferModel struct {
	BaseModel
	Code               string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	ProjectTitle       string          `gorm:"type:varchar(255)"`
	ProjectObjective   string          `gorm:"type:text"`
	ExperimentalDesign string          `gorm:"type:text"`
	NetPrice           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency           string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	VAT                decimal.Decimal `gorm:"column:vat;type:decimal(5,4);not null"`
	DocumentKey        string          `gorm:"type:varchar(512)"`
}

// TableName returns the table name for GORM
func (OfferModel) TableName() string {
	return "offers"
}

// ToDomain converts the model to a domain Offer
func (m *OfferModel) ToDomain() *offer.Offer {
	currency := valueobject.Currency(m.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	price, _ := valueobject.NewMoney(m.NetPrice, currency)
	return &offer.Offer{
		BaseEntity:         m.BaseModel.Entity(),
		Code:               m.Code,
		ProjectTitle:       m.ProjectTitle,
		ProjectObjective:   m.ProjectObjective,
		ExperimentalDesign: m.ExperimentalDesign,
		NetPrice:           price,
		VAT:                m.VAT,
		DocumentKey:        m.DocumentKey,
	}
}

// OfferModelFromDomain creates the model of a domain Offer
func OfferModelFromDomain(o *offer.Offer) *OfferModel {
	m := &OfferModel{
		Code:               o.Code,
		ProjectTitle:       o.ProjectTitle,
		ProjectObjective:   o.ProjectObjective,
		ExperimentalDesign: o.ExperimentalDesign,
		NetPrice:           o.NetPrice.Amount(),
		Currency:           string(o.NetPrice.Currency()),
		VAT:                o.VAT,
		DocumentKey:        o.DocumentKey,
	}
	m.SetEntity(o.BaseEntity)
	return m
}
