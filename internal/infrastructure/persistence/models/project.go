package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/project"
)

// ContactColumns is embedded with a column prefix for each project contact
type ContactColumns struct {
	FullName   string `gorm:"type:varchar(255)"`
	Email      string `gorm:"type:varchar(255)"`
	OIDC       string `gorm:"column:oidc;type:varchar(255)"`
	OIDCIssuer string `gorm:"column:oidc_issuer;type:varchar(255)"`
}

func (c ContactColumns) toDomain() project.Contact {
	return project.Contact{FullName: c.FullName, Email: c.Email, OIDC: c.OIDC, OIDCIssuer: c.OIDCIssuer}
}

func contactColumns(c project.Contact) ContactColumns {
	return ContactColumns{FullName: c.FullName, Email: c.Email, OIDC: c.OIDC, OIDCIssuer: c.OIDCIssuer}
}

// ProjectModel is the persistence model for the Project aggregate
type ProjectModel struct {
	AggregateModel
	Code                  string         `gorm:"type:varchar(16);not null;uniqueIndex"`
	Title                 string         `gorm:"type:varchar(255);not null"`
	Objective             string         `gorm:"type:text;not null"`
	ProjectManager        ContactColumns `gorm:"embedded;embeddedPrefix:manager_"`
	PrincipalInvestigator ContactColumns `gorm:"embedded;embeddedPrefix:investigator_"`
	HasResponsible        bool           `gorm:"not null;default:false"`
	ResponsiblePerson     ContactColumns `gorm:"embedded;embeddedPrefix:responsible_"`
	FundingLabel          *string        `gorm:"type:varchar(255)"`
	FundingReferenceID    *string        `gorm:"type:varchar(255)"`
	LinkedOffers          []string       `gorm:"type:text;serializer:json"`
	ExperimentIDs         []uuid.UUID    `gorm:"type:text;serializer:json"`
	LastModified          time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *project.Project {
	p := &project.Project{
		BaseAggregateRoot:     m.Root(),
		Code:                  project.MustParseCode(m.Code),
		Title:                 m.Title,
		Objective:             m.Objective,
		ProjectManager:        m.ProjectManager.toDomain(),
		PrincipalInvestigator: m.PrincipalInvestigator.toDomain(),
		LinkedOffers:          make([]project.OfferIdentifier, 0, len(m.LinkedOffers)),
		ExperimentIDs:         append([]uuid.UUID{}, m.ExperimentIDs...),
		LastModified:          m.LastModified,
	}
	if m.HasResponsible {
		person := m.ResponsiblePerson.toDomain()
		p.ResponsiblePerson = &person
	}
	if m.FundingLabel != nil {
		funding := project.Funding{Label: *m.FundingLabel}
		if m.FundingReferenceID != nil {
			funding.ReferenceID = *m.FundingReferenceID
		}
		p.Funding = &funding
	}
	for _, offer := range m.LinkedOffers {
		p.LinkedOffers = append(p.LinkedOffers, project.OfferIdentifier(offer))
	}
	return p
}

// FromDomain populates the persistence model from a domain Project
func (m *ProjectModel) FromDomain(p *project.Project) {
	m.SetRoot(p.BaseAggregateRoot)
	m.Code = p.Code.String()
	m.Title = p.Title
	m.Objective = p.Objective
	m.ProjectManager = contactColumns(p.ProjectManager)
	m.PrincipalInvestigator = contactColumns(p.PrincipalInvestigator)
	m.HasResponsible = p.ResponsiblePerson != nil
	m.ResponsiblePerson = ContactColumns{}
	if p.ResponsiblePerson != nil {
		m.ResponsiblePerson = contactColumns(*p.ResponsiblePerson)
	}
	m.FundingLabel, m.FundingReferenceID = nil, nil
	if p.Funding != nil {
		label, ref := p.Funding.Label, p.Funding.ReferenceID
		m.FundingLabel, m.FundingReferenceID = &label, &ref
	}
	m.LinkedOffers = make([]string, 0, len(p.LinkedOffers))
	for _, offer := range p.LinkedOffers {
		m.LinkedOffers = append(m.LinkedOffers, string(offer))
	}
	m.ExperimentIDs = append([]uuid.UUID{}, p.ExperimentIDs...)
	m.LastModified = p.LastModified
}

// ProjectModelFromDomain creates a new persistence model from a domain Project
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}
