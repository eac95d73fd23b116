package models

import (
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/ontology"
)

// OntologyTermModel is a locally stored ontology class
type OntologyTermModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Category             string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_term_category_class"`
	CURIE                string    `gorm:"column:curie;type:varchar(128);not null;index"`
	OntologyAbbreviation string    `gorm:"type:varchar(32)"`
	OntologyVersion      string    `gorm:"type:varchar(64)"`
	OntologyIRI          string    `gorm:"type:varchar(512)"`
	Label                string    `gorm:"type:varchar(512);not null;index"`
	Name                 string    `gorm:"type:varchar(128)"`
	Description          string    `gorm:"type:text"`
	ClassIRI             string    `gorm:"type:varchar(512);not null;uniqueIndex:idx_term_category_class"`
}

// TableName returns the table name for GORM
func (OntologyTermModel) TableName() string {
	return "ontology_terms"
}

// ToDomain converts the model to a domain Term
func (m *OntologyTermModel) ToDomain() ontology.Term {
	return ontology.Term{
		OntologyAbbreviation: m.OntologyAbbreviation,
		OntologyVersion:      m.OntologyVersion,
		OntologyIRI:          m.OntologyIRI,
		Label:                m.Label,
		Name:                 m.Name,
		Description:          m.Description,
		ClassIRI:             m.ClassIRI,
	}
}

// OntologyTermModelFromDomain creates the model of a term stored under a category
func OntologyTermModelFromDomain(category ontology.Category, t ontology.Term) *OntologyTermModel {
	return &OntologyTermModel{
		ID:                   uuid.New(),
		Category:             string(category),
		CURIE:                t.CURIE(),
		OntologyAbbreviation: t.OntologyAbbreviation,
		OntologyVersion:      t.OntologyVersion,
		OntologyIRI:          t.OntologyIRI,
		Label:                t.Label,
		Name:                 t.Name,
		Description:          t.Description,
		ClassIRI:             t.ClassIRI,
	}
}
