package export

import (
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/project"
)

// Contact point roles in the project summary
const (
	RolePrincipalInvestigator = "principal investigator"
	RoleProjectManager        = "project manager"
	RoleResponsiblePerson     = "responsible person"
)

// ResearchProject is the project summary written to project-summary.yml
type ResearchProject struct {
	Identifier    string              `yaml:"identifier" json:"identifier"`
	Name          string              `yaml:"name" json:"name"`
	Description   string              `yaml:"description" json:"description"`
	ContactPoints []ContactPoint      `yaml:"contactPoint" json:"contact_points"`
	Funding       *Funding            `yaml:"funding,omitempty" json:"funding,omitempty"`
	Experiments   []ExperimentSummary `yaml:"experiments,omitempty" json:"experiments,omitempty"`
	Samples       int64               `yaml:"numberOfSamples" json:"samples"`
	Measurements  MeasurementCounts   `yaml:"measurements" json:"measurements"`
	Collaborators []string            `yaml:"collaborators,omitempty" json:"collaborators,omitempty"`
}

// ContactPoint is a person to contact about the project
type ContactPoint struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
	Role  string `yaml:"contactType" json:"role"`
}

// Funding names the grant the project is funded by
type Funding struct {
	Label       string `yaml:"name" json:"label"`
	ReferenceID string `yaml:"identifier" json:"reference_id"`
}

// ExperimentSummary lists the biological setup of an experiment
type ExperimentSummary struct {
	Name      string   `yaml:"name" json:"name"`
	Species   []string `yaml:"species,omitempty" json:"species,omitempty"`
	Specimens []string `yaml:"specimens,omitempty" json:"specimens,omitempty"`
	Analytes  []string `yaml:"analytes,omitempty" json:"analytes,omitempty"`
	Groups    int      `yaml:"experimentalGroups" json:"groups"`
}

// MeasurementCounts counts the measurements per kind
type MeasurementCounts struct {
	NGS int64 `yaml:"ngs" json:"ngs"`
	PxP int64 `yaml:"proteomics" json:"pxp"`
}

// NewResearchProject summarises a project. overview may be nil when no
// read model row exists yet.
func NewResearchProject(p *project.Project, experiments []experiment.Experiment, overview *project.Overview) ResearchProject {
	rp := ResearchProject{
		Identifier:  p.Code.String(),
		Name:        p.Title,
		Description: p.Objective,
		ContactPoints: []ContactPoint{
			contactPoint(p.PrincipalInvestigator, RolePrincipalInvestigator),
			contactPoint(p.ProjectManager, RoleProjectManager),
		},
	}
	if p.ResponsiblePerson != nil {
		rp.ContactPoints = append(rp.ContactPoints, contactPoint(*p.ResponsiblePerson, RoleResponsiblePerson))
	}
	if p.Funding != nil {
		rp.Funding = &Funding{Label: p.Funding.Label, ReferenceID: p.Funding.ReferenceID}
	}
	for _, e := range experiments {
		rp.Experiments = append(rp.Experiments, ExperimentSummary{
			Name:      e.Name,
			Species:   formatTerms(e.Species),
			Specimens: formatTerms(e.Specimens),
			Analytes:  formatTerms(e.Analytes),
			Groups:    len(e.Design.Groups),
		})
	}
	if overview != nil {
		rp.Samples = overview.SampleCount
		rp.Measurements = MeasurementCounts{NGS: overview.NGSMeasurementCount, PxP: overview.PxPMeasurementCount}
		rp.Collaborators = overview.Collaborators
	}
	return rp
}

// FundingText is how the funding appears in the crate description
func (rp ResearchProject) FundingText() string {
	if rp.Funding == nil {
		return "no funding information"
	}
	if rp.Funding.ReferenceID == "" {
		return rp.Funding.Label
	}
	return rp.Funding.Label + " (" + rp.Funding.ReferenceID + ")"
}

func contactPoint(c project.Contact, role string) ContactPoint {
	return ContactPoint{Name: c.FullName, Email: c.Email, Role: role}
}

func formatTerms(terms []ontology.Term) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, ontology.FormatTerm(t))
	}
	return out
}
