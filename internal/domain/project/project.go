package project

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

const (
	TitleMaxLength     = 150
	ObjectiveMaxLength = 2000
)

// Project is the aggregate root of the project context. It groups
// experiments and the people responsible for them.
type Project struct {
	shared.BaseAggregateRoot
	Code                  Code
	Title                 string
	Objective             string
	ProjectManager        Contact
	PrincipalInvestigator Contact
	ResponsiblePerson     *Contact
	Funding               *Funding
	LinkedOffers          []OfferIdentifier
	ExperimentIDs         []uuid.UUID
	LastModified          time.Time
}

// NewProject creates a project with its mandatory information
func NewProject(code Code, title, objective string, manager, investigator Contact) (*Project, error) {
	if code.IsZero() {
		return nil, ErrInvalidProjectCode
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateObjective(objective); err != nil {
		return nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, err
	}
	if err := investigator.Validate(); err != nil {
		return nil, err
	}

	p := &Project{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		Code:                  code,
		Title:                 strings.TrimSpace(title),
		Objective:             strings.TrimSpace(objective),
		ProjectManager:        manager,
		PrincipalInvestigator: investigator,
		LinkedOffers:          make([]OfferIdentifier, 0),
		ExperimentIDs:         make([]uuid.UUID, 0),
	}
	p.LastModified = p.CreatedAt
	p.AddDomainEvent(NewProjectCreatedEvent(p))
	return p, nil
}

// UpdateTitle changes the project title
func (p *Project) UpdateTitle(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == p.Title {
		return nil
	}
	p.Title = title
	p.changed("title")
	return nil
}

// StateObjective changes the project objective
func (p *Project) StateObjective(objective string) error {
	if err := validateObjective(objective); err != nil {
		return err
	}
	objective = strings.TrimSpace(objective)
	if objective == p.Objective {
		return nil
	}
	p.Objective = objective
	p.changed("objective")
	return nil
}

// SetProjectManager assigns the project manager
func (p *Project) SetProjectManager(manager Contact) error {
	if err := manager.Validate(); err != nil {
		return err
	}
	if manager == p.ProjectManager {
		return nil
	}
	p.ProjectManager = manager
	p.changed("project_manager")
	return nil
}

// InvestigateProject assigns the principal investigator
func (p *Project) InvestigateProject(investigator Contact) error {
	if err := investigator.Validate(); err != nil {
		return err
	}
	if investigator == p.PrincipalInvestigator {
		return nil
	}
	p.PrincipalInvestigator = investigator
	p.changed("principal_investigator")
	return nil
}

// SetResponsiblePerson assigns the optional responsible person
func (p *Project) SetResponsiblePerson(person Contact) error {
	if err := person.Validate(); err != nil {
		return err
	}
	if p.ResponsiblePerson != nil && *p.ResponsiblePerson == person {
		return nil
	}
	p.ResponsiblePerson = &person
	p.changed("responsible_person")
	return nil
}

// RemoveResponsiblePerson clears the responsible person
func (p *Project) RemoveResponsiblePerson() {
	if p.ResponsiblePerson == nil {
		return
	}
	p.ResponsiblePerson = nil
	p.changed("responsible_person")
}

// SetFunding sets the grant information
func (p *Project) SetFunding(funding Funding) {
	if p.Funding != nil && *p.Funding == funding {
		return
	}
	p.Funding = &funding
	p.changed("funding")
}

// RemoveFunding clears the grant information
func (p *Project) RemoveFunding() {
	if p.Funding == nil {
		return
	}
	p.Funding = nil
	p.changed("funding")
}

// LinkOffer links an offer; linking twice is a no-op
func (p *Project) LinkOffer(offer OfferIdentifier) {
	if p.HasOffer(offer) {
		return
	}
	p.LinkedOffers = append(p.LinkedOffers, offer)
	p.changed("offers")
}

// UnlinkOffer removes a linked offer if present
func (p *Project) UnlinkOffer(offer OfferIdentifier) {
	for i, o := range p.LinkedOffers {
		if o == offer {
			p.LinkedOffers = append(p.LinkedOffers[:i], p.LinkedOffers[i+1:]...)
			p.changed("offers")
			return
		}
	}
}

// HasOffer reports whether the offer is linked
func (p *Project) HasOffer(offer OfferIdentifier) bool {
	for _, o := range p.LinkedOffers {
		if o == offer {
			return true
		}
	}
	return false
}

// AddExperiment registers an experiment with the project
func (p *Project) AddExperiment(experimentID uuid.UUID) {
	for _, id := range p.ExperimentIDs {
		if id == experimentID {
			return
		}
	}
	p.ExperimentIDs = append(p.ExperimentIDs, experimentID)
	p.changed("experiments")
}

// RemoveExperiment unregisters an experiment
func (p *Project) RemoveExperiment(experimentID uuid.UUID) {
	for i, id := range p.ExperimentIDs {
		if id == experimentID {
			p.ExperimentIDs = append(p.ExperimentIDs[:i], p.ExperimentIDs[i+1:]...)
			p.changed("experiments")
			return
		}
	}
}

// Contacts returns everyone named on the project
func (p *Project) Contacts() []Contact {
	contacts := []Contact{p.PrincipalInvestigator, p.ProjectManager}
	if p.ResponsiblePerson != nil {
		contacts = append(contacts, *p.ResponsiblePerson)
	}
	return contacts
}

func (p *Project) changed(field string) {
	p.LastModified = time.Now()
	p.UpdatedAt = p.LastModified
	p.IncrementVersion()
	p.AddDomainEvent(NewProjectChangedEvent(p.ID, field))
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_PROJECT_TITLE", "Project title must not be empty")
	}
	if utf8.RuneCountInString(title) > TitleMaxLength {
		return shared.NewDomainError("INVALID_PROJECT_TITLE", "Project title cannot exceed 150 characters")
	}
	return nil
}

func validateObjective(objective string) error {
	objective = strings.TrimSpace(objective)
	if objective == "" {
		return shared.NewDomainError("INVALID_PROJECT_OBJECTIVE", "Project objective must not be empty")
	}
	if utf8.RuneCountInString(objective) > ObjectiveMaxLength {
		return shared.NewDomainError("INVALID_PROJECT_OBJECTIVE", "Project objective cannot exceed 2000 characters")
	}
	return nil
}
