package project

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/project"
)

// ContactInput describes a person named on a project
type ContactInput struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	OIDC       string `json:"oidc,omitempty"`
	OIDCIssuer string `json:"oidc_issuer,omitempty"`
}

func (c ContactInput) toContact() (project.Contact, error) {
	contact, err := project.NewContact(c.FullName, c.Email)
	if err != nil {
		return project.Contact{}, err
	}
	if c.OIDC != "" {
		contact = contact.WithOIDC(c.OIDCIssuer, c.OIDC)
	}
	return contact, nil
}

// FundingInput describes the grant a project is funded by
type FundingInput struct {
	Grant   string `json:"grant" binding:"required"`
	GrantID string `json:"grant_id" binding:"required"`
}

// CreateProjectRequest is the input for creating a project. Title and
// objective default to the offer's when an offer code is given.
type CreateProjectRequest struct {
	Code         string                 `json:"code,omitempty" binding:"omitempty,project_code"`
	Title        string                 `json:"title" binding:"max=150"`
	Objective    string                 `json:"objective" binding:"max=2000"`
	Investigator ContactInput           `json:"principal_investigator" binding:"required"`
	Manager      ContactInput           `json:"project_manager" binding:"required"`
	Responsible  *ContactInput          `json:"responsible_person,omitempty"`
	Funding      *FundingInput          `json:"funding,omitempty"`
	OfferCode    string                 `json:"offer_code,omitempty"`
	Experiment   *ExperimentDescription `json:"experiment,omitempty"`
}

// ProjectResponse is the detailed view of a project
type ProjectResponse struct {
	ID                    uuid.UUID        `json:"id"`
	Code                  string           `json:"code"`
	Title                 string           `json:"title"`
	Objective             string           `json:"objective"`
	PrincipalInvestigator project.Contact  `json:"principal_investigator"`
	ProjectManager        project.Contact  `json:"project_manager"`
	ResponsiblePerson     *project.Contact `json:"responsible_person,omitempty"`
	Funding               *project.Funding `json:"funding,omitempty"`
	Offers                []string         `json:"offers"`
	ExperimentIDs         []uuid.UUID      `json:"experiment_ids"`
	CreatedAt             time.Time        `json:"created_at"`
	LastModified          time.Time        `json:"last_modified"`
	Version               int              `json:"version"`
}

// ToProjectResponse converts a project to its response
func ToProjectResponse(p *project.Project) ProjectResponse {
	offers := make([]string, 0, len(p.LinkedOffers))
	for _, o := range p.LinkedOffers {
		offers = append(offers, string(o))
	}
	return ProjectResponse{
		ID:                    p.ID,
		Code:                  p.Code.String(),
		Title:                 p.Title,
		Objective:             p.Objective,
		PrincipalInvestigator: p.PrincipalInvestigator,
		ProjectManager:        p.ProjectManager,
		ResponsiblePerson:     p.ResponsiblePerson,
		Funding:               p.Funding,
		Offers:                offers,
		ExperimentIDs:         p.ExperimentIDs,
		CreatedAt:             p.CreatedAt,
		LastModified:          p.LastModified,
		Version:               p.GetVersion(),
	}
}

// ExperimentDescription names an experiment and what it studies. Terms are
// given as CURIEs or "label [CURIE]" strings.
type ExperimentDescription struct {
	Name      string   `json:"name"`
	Species   []string `json:"species"`
	Specimens []string `json:"specimens"`
	Analytes  []string `json:"analytes"`
}

// VariableInput describes an experimental variable
type VariableInput struct {
	Name   string   `json:"name" binding:"required"`
	Unit   string   `json:"unit,omitempty"`
	Levels []string `json:"levels" binding:"required,min=1"`
}

// LevelInput selects a level of a variable for a group condition
type LevelInput struct {
	Variable string `json:"variable" binding:"required"`
	Value    string `json:"value" binding:"required"`
	Unit     string `json:"unit,omitempty"`
}

// GroupInput describes an experimental group
type GroupInput struct {
	Name       string       `json:"name"`
	SampleSize int          `json:"sample_size" binding:"required,min=1"`
	Levels     []LevelInput `json:"levels" binding:"required,min=1"`
}

func (g GroupInput) levels() []experiment.Level {
	levels := make([]experiment.Level, 0, len(g.Levels))
	for _, l := range g.Levels {
		levels = append(levels, experiment.Level{
			VariableName: l.Variable,
			Value:        experiment.Value{Value: l.Value, Unit: l.Unit},
		})
	}
	return levels
}

// ExperimentResponse is the detailed view of an experiment
type ExperimentResponse struct {
	ID        uuid.UUID             `json:"id"`
	ProjectID uuid.UUID             `json:"project_id"`
	Name      string                `json:"name"`
	Species   []ontology.Term       `json:"species"`
	Specimens []ontology.Term       `json:"specimens"`
	Analytes  []ontology.Term       `json:"analytes"`
	Variables []experiment.Variable `json:"variables"`
	Groups    []experiment.Group    `json:"groups"`
	Version   int                   `json:"version"`
}

// ToExperimentResponse converts an experiment to its response
func ToExperimentResponse(e *experiment.Experiment) ExperimentResponse {
	return ExperimentResponse{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		Name:      e.Name,
		Species:   e.Species,
		Specimens: e.Specimens,
		Analytes:  e.Analytes,
		Variables: e.Design.Variables,
		Groups:    e.Design.Groups,
		Version:   e.GetVersion(),
	}
}

// ConfoundingLevelInput sets the value of a confounding variable for a sample
type ConfoundingLevelInput struct {
	VariableID uuid.UUID `json:"variable_id" binding:"required"`
	SampleID   uuid.UUID `json:"sample_id" binding:"required"`
	Value      string    `json:"value"`
}
