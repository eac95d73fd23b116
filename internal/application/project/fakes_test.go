package project

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	appaccess "github.com/qbic/datamanager/internal/application/access"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/offer"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeProjects struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*project.Project
	saveErrs  []error
	saveCalls int
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{byID: make(map[uuid.UUID]*project.Project)}
}

func (r *fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	copied.LinkedOffers = slices.Clone(p.LinkedOffers)
	copied.ExperimentIDs = slices.Clone(p.ExperimentIDs)
	copied.ClearDomainEvents()
	return &copied, nil
}

func (r *fakeProjects) FindByCode(_ context.Context, code project.Code) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProjects) ExistsByCode(ctx context.Context, code project.Code) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	return err == nil, nil
}

func (r *fakeProjects) Save(_ context.Context, p *project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if len(r.saveErrs) > 0 {
		err := r.saveErrs[0]
		r.saveErrs = r.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	p.MarkPersisted()
	copied := *p
	copied.LinkedOffers = slices.Clone(p.LinkedOffers)
	copied.ExperimentIDs = slices.Clone(p.ExperimentIDs)
	r.byID[p.ID] = &copied
	return nil
}

func (r *fakeProjects) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type fakeOverviews struct {
	lastIDs []uuid.UUID
	items   []project.Overview
}

func (f *fakeOverviews) Query(_ context.Context, ids []uuid.UUID, _ shared.Filter) ([]project.Overview, error) {
	f.lastIDs = ids
	if ids == nil {
		return f.items, nil
	}
	var out []project.Overview
	for _, o := range f.items {
		if slices.Contains(ids, o.ProjectID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOverviews) Count(ctx context.Context, ids []uuid.UUID, filter shared.Filter) (int64, error) {
	items, _ := f.Query(ctx, ids, filter)
	return int64(len(items)), nil
}

type fakeOffers struct {
	offers map[string]*offer.Offer
}

func newFakeOffers(offers ...*offer.Offer) *fakeOffers {
	f := &fakeOffers{offers: make(map[string]*offer.Offer)}
	for _, o := range offers {
		f.offers[o.Code] = o
	}
	return f
}

func (f *fakeOffers) FindByCode(_ context.Context, code string) (*offer.Offer, error) {
	o, ok := f.offers[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (f *fakeOffers) Search(_ context.Context, term string, _, _ int) ([]offer.Preview, error) {
	var out []offer.Preview
	for _, o := range f.offers {
		if strings.Contains(o.Code, term) || strings.Contains(o.ProjectTitle, term) {
			out = append(out, offer.Preview{ID: o.ID, Code: o.Code, ProjectTitle: o.ProjectTitle})
		}
	}
	return out, nil
}

func (f *fakeOffers) Save(_ context.Context, o *offer.Offer) error {
	f.offers[o.Code] = o
	return nil
}

type fakeExperiments struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*experiment.Experiment
}

func newFakeExperiments() *fakeExperiments {
	return &fakeExperiments{byID: make(map[uuid.UUID]*experiment.Experiment)}
}

func cloneExperiment(e *experiment.Experiment) *experiment.Experiment {
	copied := *e
	copied.Species = slices.Clone(e.Species)
	copied.Specimens = slices.Clone(e.Specimens)
	copied.Analytes = slices.Clone(e.Analytes)
	copied.Design.Variables = slices.Clone(e.Design.Variables)
	copied.Design.Groups = slices.Clone(e.Design.Groups)
	copied.ClearDomainEvents()
	return &copied
}

func (r *fakeExperiments) FindByID(_ context.Context, id uuid.UUID) (*experiment.Experiment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneExperiment(e), nil
}

func (r *fakeExperiments) FindByProject(_ context.Context, projectID uuid.UUID) ([]experiment.Experiment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []experiment.Experiment
	for _, e := range r.byID {
		if e.ProjectID == projectID {
			out = append(out, *cloneExperiment(e))
		}
	}
	return out, nil
}

func (r *fakeExperiments) Save(_ context.Context, e *experiment.Experiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.MarkPersisted()
	r.byID[e.ID] = cloneExperiment(e)
	return nil
}

func (r *fakeExperiments) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type fakeConfounding struct {
	variables map[uuid.UUID]*experiment.ConfoundingVariable
	levels    []experiment.ConfoundingLevel
}

func newFakeConfounding() *fakeConfounding {
	return &fakeConfounding{variables: make(map[uuid.UUID]*experiment.ConfoundingVariable)}
}

func (r *fakeConfounding) SaveVariable(_ context.Context, v *experiment.ConfoundingVariable) error {
	copied := *v
	r.variables[v.ID] = &copied
	return nil
}

func (r *fakeConfounding) FindVariable(_ context.Context, id uuid.UUID) (*experiment.ConfoundingVariable, error) {
	v, ok := r.variables[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *fakeConfounding) FindVariablesByExperiment(_ context.Context, experimentID uuid.UUID) ([]experiment.ConfoundingVariable, error) {
	var out []experiment.ConfoundingVariable
	for _, v := range r.variables {
		if v.ExperimentID == experimentID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeConfounding) DeleteVariable(_ context.Context, id uuid.UUID) error {
	delete(r.variables, id)
	r.levels = slices.DeleteFunc(r.levels, func(l experiment.ConfoundingLevel) bool { return l.VariableID == id })
	return nil
}

func (r *fakeConfounding) UpsertLevels(_ context.Context, levels []experiment.ConfoundingLevel) error {
	for _, l := range levels {
		r.levels = slices.DeleteFunc(r.levels, func(existing experiment.ConfoundingLevel) bool {
			return existing.VariableID == l.VariableID && existing.SampleID == l.SampleID
		})
		r.levels = append(r.levels, l)
	}
	return nil
}

func (r *fakeConfounding) FindLevelsBySamples(_ context.Context, sampleIDs []uuid.UUID) ([]experiment.ConfoundingLevel, error) {
	var out []experiment.ConfoundingLevel
	for _, l := range r.levels {
		if slices.Contains(sampleIDs, l.SampleID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeConfounding) DeleteLevelsBySamples(_ context.Context, sampleIDs []uuid.UUID) error {
	r.levels = slices.DeleteFunc(r.levels, func(l experiment.ConfoundingLevel) bool { return slices.Contains(sampleIDs, l.SampleID) })
	return nil
}

type fakeACL struct {
	mu      sync.Mutex
	entries []access.Entry
}

func (a *fakeACL) Grant(_ context.Context, entries ...access.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range entries {
		if !slices.Contains(a.entries, e) {
			a.entries = append(a.entries, e)
		}
	}
	return nil
}

func (a *fakeACL) Deny(_ context.Context, entry access.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = slices.DeleteFunc(a.entries, func(e access.Entry) bool { return e == entry })
	return nil
}

func (a *fakeACL) DenyAll(_ context.Context, projectID uuid.UUID, sid string, principal bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = slices.DeleteFunc(a.entries, func(e access.Entry) bool {
		return e.ProjectID == projectID && e.Sid == sid && e.Principal == principal
	})
	return nil
}

func (a *fakeACL) FindByProject(_ context.Context, projectID uuid.UUID) ([]access.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []access.Entry
	for _, e := range a.entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *fakeACL) Exists(_ context.Context, projectID uuid.UUID, sids []string, permission access.Permission) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.ProjectID == projectID && e.Permission == permission && slices.Contains(sids, e.Sid) {
			return true, nil
		}
	}
	return false, nil
}

func (a *fakeACL) ProjectIDs(_ context.Context, sids []string, permission access.Permission) ([]uuid.UUID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []uuid.UUID
	for _, e := range a.entries {
		if e.Permission == permission && slices.Contains(sids, e.Sid) && !slices.Contains(out, e.ProjectID) {
			out = append(out, e.ProjectID)
		}
	}
	return out, nil
}

func (a *fakeACL) AllProjectIDs(_ context.Context) ([]uuid.UUID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []uuid.UUID
	for _, e := range a.entries {
		if !slices.Contains(out, e.ProjectID) {
			out = append(out, e.ProjectID)
		}
	}
	return out, nil
}

func (a *fakeACL) DeleteProject(_ context.Context, projectID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = slices.DeleteFunc(a.entries, func(e access.Entry) bool { return e.ProjectID == projectID })
	return nil
}

type fakeSampleCounter struct {
	counts map[uuid.UUID]int64
}

func (c *fakeSampleCounter) CountByExperiment(_ context.Context, id uuid.UUID) (int64, error) {
	return c.counts[id], nil
}

type fakeTerms struct {
	terms map[string]ontology.Term
}

func (f *fakeTerms) Resolve(_ context.Context, value string) (*ontology.Term, error) {
	curie, ok := ontology.ExtractCURIE(value)
	if !ok {
		curie = value
	}
	term, ok := f.terms[curie]
	if !ok {
		return nil, nil
	}
	return &term, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type countingMetrics struct {
	created int
}

func (m *countingMetrics) ProjectCreated(context.Context) {
	m.created++
}

var (
	human = ontology.Term{OntologyAbbreviation: "ncbitaxon", Label: "Homo sapiens", Name: "NCBITaxon:9606", ClassIRI: "http://purl.obolibrary.org/obo/NCBITaxon_9606"}
	blood = ontology.Term{OntologyAbbreviation: "bto", Label: "blood", Name: "BTO:0000089", ClassIRI: "http://purl.obolibrary.org/obo/BTO_0000089"}
	rna   = ontology.Term{OntologyAbbreviation: "chebi", Label: "RNA", Name: "CHEBI:33697", ClassIRI: "http://purl.obolibrary.org/obo/CHEBI_33697"}
)

type fixture struct {
	projects    *fakeProjects
	overviews   *fakeOverviews
	offers      *fakeOffers
	experiments *fakeExperiments
	confounding *fakeConfounding
	acl         *fakeACL
	samples     *fakeSampleCounter
	publisher   *recordingPublisher
	metrics     *countingMetrics
	access      *appaccess.Service
	projectSvc  *ProjectService
	experiment  *ExperimentService
}

func newFixture() *fixture {
	net, _ := valueobject.NewMoneyFromString("1000", valueobject.EUR)
	o, _ := offer.NewOffer("O-2024-0001", "Offered title", "Offered objective", net, decimal.RequireFromString("0.19"))

	f := &fixture{
		projects:    newFakeProjects(),
		overviews:   &fakeOverviews{},
		offers:      newFakeOffers(o),
		experiments: newFakeExperiments(),
		confounding: newFakeConfounding(),
		acl:         &fakeACL{},
		samples:     &fakeSampleCounter{counts: map[uuid.UUID]int64{}},
		publisher:   &recordingPublisher{},
		metrics:     &countingMetrics{},
	}
	logger := zap.NewNop()
	terms := &fakeTerms{terms: map[string]ontology.Term{
		"NCBITaxon:9606": human, "BTO:0000089": blood, "CHEBI:33697": rna,
	}}
	f.access = appaccess.NewService(f.acl, f.publisher, logger)
	f.experiment = NewExperimentService(f.experiments, f.confounding, f.projects, f.samples, terms, f.publisher, logger)
	f.projectSvc = NewProjectService(f.projects, f.overviews, f.offers, f.experiment, f.access, f.publisher, f.metrics, logger)
	return f
}

func validCreateRequest() CreateProjectRequest {
	return CreateProjectRequest{
		Title:        "Microbiome of soil samples",
		Objective:    "Understand the soil microbiome",
		Investigator: ContactInput{FullName: "Ada Lovelace", Email: "ada@example.org"},
		Manager:      ContactInput{FullName: "Grace Hopper", Email: "grace@example.org"},
	}
}
