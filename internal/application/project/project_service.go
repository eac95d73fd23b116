// Package project implements the project and experiment use cases.
package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appaccess "github.com/qbic/datamanager/internal/application/access"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/offer"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

const maxCodeAttempts = 20

var (
	ErrProjectCodeExists   = shared.NewDomainError("PROJECT_CODE_EXISTS", "A project with this code already exists")
	ErrNoFreeProjectCode   = shared.NewDomainError("NO_FREE_PROJECT_CODE", "Could not generate an unused project code")
	ErrUnknownOffer        = shared.NewDomainError("UNKNOWN_OFFER", "Offer not found")
	ErrProjectNotFound     = shared.NewDomainError("PROJECT_NOT_FOUND", "Project not found")
	ErrProjectCreateFailed = shared.NewDomainError("PROJECT_CREATION_FAILED", "Project could not be created")
)

// Metrics records project activity
type Metrics interface {
	ProjectCreated(ctx context.Context)
}

// ProjectService handles project business operations
type ProjectService struct {
	projects    project.ProjectRepository
	overviews   project.OverviewLookup
	offers      offer.OfferRepository
	experiments *ExperimentService
	access      *appaccess.Service
	publisher   shared.EventPublisher
	metrics     Metrics
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService. publisher and metrics may be nil.
func NewProjectService(
	projects project.ProjectRepository,
	overviews project.OverviewLookup,
	offers offer.OfferRepository,
	experiments *ExperimentService,
	accessService *appaccess.Service,
	publisher shared.EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projects:    projects,
		overviews:   overviews,
		offers:      offers,
		experiments: experiments,
		access:      accessService,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
	}
}

// Create registers a new project, grants the creator full access and
// optionally creates its first experiment. A failing step removes what
// was already stored.
func (s *ProjectService) Create(ctx context.Context, creatorID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	code, err := s.projectCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	title, objective := req.Title, req.Objective
	var linked *offer.Offer
	if req.OfferCode != "" {
		linked, err = s.offers.FindByCode(ctx, req.OfferCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, ErrUnknownOffer
			}
			return nil, err
		}
		if title == "" {
			title = linked.ProjectTitle
		}
		if objective == "" {
			objective = linked.ProjectObjective
		}
	}

	investigator, err := req.Investigator.toContact()
	if err != nil {
		return nil, err
	}
	manager, err := req.Manager.toContact()
	if err != nil {
		return nil, err
	}
	p, err := project.NewProject(code, title, objective, manager, investigator)
	if err != nil {
		return nil, err
	}
	if req.Responsible != nil {
		responsible, err := req.Responsible.toContact()
		if err != nil {
			return nil, err
		}
		if err := p.SetResponsiblePerson(responsible); err != nil {
			return nil, err
		}
	}
	if req.Funding != nil {
		funding, err := project.NewFunding(req.Funding.Grant, req.Funding.GrantID)
		if err != nil {
			return nil, err
		}
		p.SetFunding(funding)
	}
	if linked != nil {
		p.LinkOffer(project.OfferIdentifier(linked.Code))
	}

	if err := s.projects.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	if err := s.access.GrantCreator(ctx, p.ID, creatorID); err != nil {
		s.rollback(ctx, p.ID)
		return nil, fmt.Errorf("grant project access: %w", err)
	}

	if req.Experiment != nil {
		exp, err := s.experiments.newExperiment(ctx, p.ID, *req.Experiment)
		if err == nil {
			err = s.experiments.experiments.Save(ctx, exp)
		}
		if err != nil {
			s.rollback(ctx, p.ID)
			if shared.ErrorCode(err) != "" {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrProjectCreateFailed, err)
		}
		p.AddExperiment(exp.ID)
		if err := s.projects.Save(ctx, p); err != nil {
			_ = s.experiments.experiments.Delete(ctx, exp.ID)
			s.rollback(ctx, p.ID)
			return nil, fmt.Errorf("save project: %w", err)
		}
		s.experiments.publish(ctx, exp)
	}

	if err := shared.PublishAndClear(ctx, s.publisher, p); err != nil {
		s.logger.Warn("Failed to publish project events", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ProjectCreated(ctx)
	}
	s.logger.Info("Project created",
		zap.String("project_id", p.ID.String()),
		zap.String("project_code", p.Code.String()))

	resp := ToProjectResponse(p)
	return &resp, nil
}

func (s *ProjectService) rollback(ctx context.Context, projectID uuid.UUID) {
	if err := s.access.RemoveProject(ctx, projectID); err != nil {
		s.logger.Error("Rollback of project access failed", zap.String("project_id", projectID.String()), zap.Error(err))
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		s.logger.Error("Rollback of project failed", zap.String("project_id", projectID.String()), zap.Error(err))
	}
}

// projectCode validates a requested code or generates an unused one
func (s *ProjectService) projectCode(ctx context.Context, requested string) (project.Code, error) {
	if requested != "" {
		code, err := project.ParseCode(requested)
		if err != nil {
			return project.Code{}, err
		}
		exists, err := s.projects.ExistsByCode(ctx, code)
		if err != nil {
			return project.Code{}, err
		}
		if exists {
			return project.Code{}, ErrProjectCodeExists
		}
		return code, nil
	}
	for range maxCodeAttempts {
		code := project.NewRandomCode()
		exists, err := s.projects.ExistsByCode(ctx, code)
		if err != nil {
			return project.Code{}, err
		}
		if !exists {
			return code, nil
		}
	}
	return project.Code{}, ErrNoFreeProjectCode
}

// IsCodeUnique reports whether code is valid and unused
func (s *ProjectService) IsCodeUnique(ctx context.Context, code string) (bool, error) {
	parsed, err := project.ParseCode(code)
	if err != nil {
		return false, err
	}
	exists, err := s.projects.ExistsByCode(ctx, parsed)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Get returns a project by id
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProjectResponse(p)
	return &resp, nil
}

// GetByCode returns a project by its code
func (s *ProjectService) GetByCode(ctx context.Context, code string) (*ProjectResponse, error) {
	parsed, err := project.ParseCode(code)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.FindByCode(ctx, parsed)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	resp := ToProjectResponse(p)
	return &resp, nil
}

// Overview lists the projects the subject can read
func (s *ProjectService) Overview(ctx context.Context, subject access.Subject, filter shared.Filter) (shared.Paginated[project.Overview], error) {
	ids, err := s.access.AccessibleProjectIDs(ctx, subject, access.PermissionRead)
	if err != nil {
		return shared.Paginated[project.Overview]{}, err
	}
	items, err := s.overviews.Query(ctx, ids, filter)
	if err != nil {
		return shared.Paginated[project.Overview]{}, fmt.Errorf("query project overview: %w", err)
	}
	total, err := s.overviews.Count(ctx, ids, filter)
	if err != nil {
		return shared.Paginated[project.Overview]{}, fmt.Errorf("count project overview: %w", err)
	}
	return shared.NewPaginated(items, total, filter.Offset, filter.Limit), nil
}

// UpdateTitle changes the project title
func (s *ProjectService) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	return s.modify(ctx, id, func(p *project.Project) error {
		return p.UpdateTitle(title)
	})
}

// UpdateObjective changes the project objective
func (s *ProjectService) UpdateObjective(ctx context.Context, id uuid.UUID, objective string) error {
	return s.modify(ctx, id, func(p *project.Project) error {
		return p.StateObjective(objective)
	})
}

// UpdateDesign changes title and objective together. Nothing is saved
// unless both are valid.
func (s *ProjectService) UpdateDesign(ctx context.Context, id uuid.UUID, title, objective string) error {
	return s.modify(ctx, id, func(p *project.Project) error {
		if err := p.UpdateTitle(title); err != nil {
			return err
		}
		return p.StateObjective(objective)
	})
}

// UpdateContacts replaces the project contacts in a single save. A nil
// responsible removes the responsible person.
func (s *ProjectService) UpdateContacts(ctx context.Context, id uuid.UUID, investigator, manager ContactInput, responsible *ContactInput) error {
	pi, err := investigator.toContact()
	if err != nil {
		return err
	}
	pm, err := manager.toContact()
	if err != nil {
		return err
	}
	var person *project.Contact
	if responsible != nil {
		contact, err := responsible.toContact()
		if err != nil {
			return err
		}
		person = &contact
	}
	return s.modify(ctx, id, func(p *project.Project) error {
		if err := p.InvestigateProject(pi); err != nil {
			return err
		}
		if err := p.SetProjectManager(pm); err != nil {
			return err
		}
		if person == nil {
			p.RemoveResponsiblePerson()
			return nil
		}
		return p.SetResponsiblePerson(*person)
	})
}

// SetManager assigns the project manager
func (s *ProjectService) SetManager(ctx context.Context, id uuid.UUID, input ContactInput) error {
	contact, err := input.toContact()
	if err != nil {
		return err
	}
	return s.modify(ctx, id, func(p *project.Project) error {
		return p.SetProjectManager(contact)
	})
}

// SetInvestigator assigns the principal investigator
func (s *ProjectService) SetInvestigator(ctx context.Context, id uuid.UUID, input ContactInput) error {
	contact, err := input.toContact()
	if err != nil {
		return err
	}
	return s.modify(ctx, id, func(p *project.Project) error {
		return p.InvestigateProject(contact)
	})
}

// SetResponsible assigns the responsible person
func (s *ProjectService) SetResponsible(ctx context.Context, id uuid.UUID, input ContactInput) error {
	contact, err := input.toContact()
	if err != nil {
		return err
	}
	return s.modify(ctx, id, func(p *project.Project) error {
		return p.SetResponsiblePerson(contact)
	})
}

// RemoveResponsible clears the responsible person
func (s *ProjectService) RemoveResponsible(ctx context.Context, id uuid.UUID) error {
	return s.modify(ctx, id, func(p *project.Project) error {
		p.RemoveResponsiblePerson()
		return nil
	})
}

// SetFunding sets the grant information
func (s *ProjectService) SetFunding(ctx context.Context, id uuid.UUID, input FundingInput) error {
	funding, err := project.NewFunding(input.Grant, input.GrantID)
	if err != nil {
		return err
	}
	return s.modify(ctx, id, func(p *project.Project) error {
		p.SetFunding(funding)
		return nil
	})
}

// RemoveFunding clears the grant information
func (s *ProjectService) RemoveFunding(ctx context.Context, id uuid.UUID) error {
	return s.modify(ctx, id, func(p *project.Project) error {
		p.RemoveFunding()
		return nil
	})
}

// LinkOffer links an existing offer to the project
func (s *ProjectService) LinkOffer(ctx context.Context, id uuid.UUID, offerCode string) error {
	identifier, err := project.NewOfferIdentifier(offerCode)
	if err != nil {
		return err
	}
	if _, err := s.offers.FindByCode(ctx, string(identifier)); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUnknownOffer
		}
		return err
	}
	return s.modify(ctx, id, func(p *project.Project) error {
		p.LinkOffer(identifier)
		return nil
	})
}

// UnlinkOffer removes an offer from the project
func (s *ProjectService) UnlinkOffer(ctx context.Context, id uuid.UUID, offerCode string) error {
	identifier, err := project.NewOfferIdentifier(offerCode)
	if err != nil {
		return err
	}
	return s.modify(ctx, id, func(p *project.Project) error {
		p.UnlinkOffer(identifier)
		return nil
	})
}

// modify loads a project, applies fn and saves it when fn changed something
func (s *ProjectService) modify(ctx context.Context, id uuid.UUID, fn func(p *project.Project) error) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	if !p.IsDirty() {
		return nil
	}
	if err := s.projects.Save(ctx, p); err != nil {
		return err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, p); err != nil {
		s.logger.Warn("Failed to publish project events", zap.Error(err))
	}
	return nil
}

func (s *ProjectService) find(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}
