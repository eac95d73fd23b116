package sample

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	human = ontology.Term{OntologyAbbreviation: "ncbitaxon", Label: "Homo sapiens", Name: "NCBITaxon:9606", ClassIRI: "http://purl.obolibrary.org/obo/NCBITaxon_9606"}
	blood = ontology.Term{OntologyAbbreviation: "bto", Label: "blood", Name: "BTO:0000089", ClassIRI: "http://purl.obolibrary.org/obo/BTO_0000089"}
	rna   = ontology.Term{OntologyAbbreviation: "chebi", Label: "RNA", Name: "CHEBI:33697", ClassIRI: "http://purl.obolibrary.org/obo/CHEBI_33697"}
)

type fakeProjects struct {
	byID map[uuid.UUID]*project.Project
}

func (r *fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakeProjects) FindByCode(_ context.Context, code project.Code) (*project.Project, error) {
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
	r.byID[p.ID] = p
	return nil
}

func (r *fakeProjects) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type fakeExperiments struct {
	byID map[uuid.UUID]*experiment.Experiment
}

func (r *fakeExperiments) FindByID(_ context.Context, id uuid.UUID) (*experiment.Experiment, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *fakeExperiments) FindByProject(_ context.Context, projectID uuid.UUID) ([]experiment.Experiment, error) {
	var out []experiment.Experiment
	for _, e := range r.byID {
		if e.ProjectID == projectID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExperiments) Save(_ context.Context, e *experiment.Experiment) error {
	r.byID[e.ID] = e
	return nil
}

func (r *fakeExperiments) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type fakeConfounding struct {
	variables map[uuid.UUID]*experiment.ConfoundingVariable
	levels    []experiment.ConfoundingLevel
	upsertErr error
}

func newFakeConfounding() *fakeConfounding {
	return &fakeConfounding{variables: make(map[uuid.UUID]*experiment.ConfoundingVariable)}
}

func (r *fakeConfounding) SaveVariable(_ context.Context, v *experiment.ConfoundingVariable) error {
	r.variables[v.ID] = v
	return nil
}

func (r *fakeConfounding) FindVariable(_ context.Context, id uuid.UUID) (*experiment.ConfoundingVariable, error) {
	v, ok := r.variables[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return v, nil
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
	return nil
}

func (r *fakeConfounding) UpsertLevels(_ context.Context, levels []experiment.ConfoundingLevel) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	for _, l := range levels {
		r.levels = slices.DeleteFunc(r.levels, func(o experiment.ConfoundingLevel) bool {
			return o.VariableID == l.VariableID && o.SampleID == l.SampleID
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
	r.levels = slices.DeleteFunc(r.levels, func(l experiment.ConfoundingLevel) bool {
		return slices.Contains(sampleIDs, l.SampleID)
	})
	return nil
}

type fakeSamples struct {
	byID    map[uuid.UUID]*sample.Sample
	saveErr error
}

func newFakeSamples() *fakeSamples {
	return &fakeSamples{byID: make(map[uuid.UUID]*sample.Sample)}
}

func (r *fakeSamples) FindByID(_ context.Context, id uuid.UUID) (*sample.Sample, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSamples) FindByIDs(_ context.Context, ids []uuid.UUID) ([]sample.Sample, error) {
	var out []sample.Sample
	for _, id := range ids {
		if s, ok := r.byID[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSamples) FindByCodes(_ context.Context, codes []sample.Code) ([]sample.Sample, error) {
	var out []sample.Sample
	for _, s := range r.byID {
		if slices.Contains(codes, s.Code) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSamples) FindByProject(_ context.Context, projectID uuid.UUID, _ shared.Filter) ([]sample.Sample, error) {
	var out []sample.Sample
	for _, s := range r.byID {
		if s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSamples) FindByExperiment(_ context.Context, experimentID uuid.UUID) ([]sample.Sample, error) {
	var out []sample.Sample
	for _, s := range r.byID {
		if s.ExperimentID == experimentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSamples) FindByBatch(_ context.Context, batchID uuid.UUID) ([]sample.Sample, error) {
	var out []sample.Sample
	for _, s := range r.byID {
		if s.BatchID == batchID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSamples) CountByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (int64, error) {
	found, _ := r.FindByProject(ctx, projectID, filter)
	return int64(len(found)), nil
}

func (r *fakeSamples) CountByExperiment(ctx context.Context, experimentID uuid.UUID) (int64, error) {
	found, _ := r.FindByExperiment(ctx, experimentID)
	return int64(len(found)), nil
}

func (r *fakeSamples) SaveBatch(_ context.Context, samples []*sample.Sample) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, s := range samples {
		s.MarkPersisted()
		copied := *s
		copied.ClearDomainEvents()
		r.byID[s.ID] = &copied
	}
	return nil
}

func (r *fakeSamples) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(r.byID, id)
	}
	return nil
}

// fakeBatches enforces optimistic locking like the gorm repository
type fakeBatches struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*sample.Batch
	conflicts int
	saveErr   error
	saves     int
}

func newFakeBatches() *fakeBatches {
	return &fakeBatches{byID: make(map[uuid.UUID]*sample.Batch)}
}

func (r *fakeBatches) FindByID(_ context.Context, id uuid.UUID) (*sample.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *b
	copied.SampleIDs = slices.Clone(b.SampleIDs)
	return &copied, nil
}

func (r *fakeBatches) FindByProject(_ context.Context, projectID uuid.UUID) ([]sample.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sample.Batch
	for _, b := range r.byID {
		if b.ProjectID == projectID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatches) Save(_ context.Context, b *sample.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil && b.PersistedVersion() != 0 {
		return r.saveErr
	}
	if r.conflicts > 0 && b.PersistedVersion() != 0 {
		r.conflicts--
		return shared.ErrConcurrencyConflict
	}
	if stored, ok := r.byID[b.ID]; ok && stored.GetVersion() != b.PersistedVersion() {
		return shared.ErrConcurrencyConflict
	}
	b.MarkPersisted()
	copied := *b
	copied.SampleIDs = slices.Clone(b.SampleIDs)
	copied.ClearDomainEvents()
	r.byID[b.ID] = &copied
	return nil
}

func (r *fakeBatches) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type fakeSequence struct {
	next map[uuid.UUID]int
	err  error
}

func (s *fakeSequence) Next(_ context.Context, projectID uuid.UUID, count int) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.next == nil {
		s.next = make(map[uuid.UUID]int)
	}
	first := s.next[projectID] + 1
	s.next[projectID] += count
	return first, nil
}

type fakeMeasurements struct {
	withData map[uuid.UUID]bool
}

func (f *fakeMeasurements) CountBySampleIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if f.withData[id] {
			n++
		}
	}
	return n, nil
}

type fakeTerms struct {
	terms map[string]ontology.Term
}

func (f *fakeTerms) FindByCURIE(_ context.Context, curie string) (*ontology.Term, error) {
	t, ok := f.terms[curie]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	n := 0
	for _, e := range p.events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

type countingMetrics struct {
	samples int
}

func (m *countingMetrics) SamplesRegistered(_ context.Context, _ string, n int) {
	m.samples += n
}

type fixture struct {
	project      *project.Project
	experiment   *experiment.Experiment
	group        experiment.Group
	confounder   *experiment.ConfoundingVariable
	projects     *fakeProjects
	samples      *fakeSamples
	batches      *fakeBatches
	sequence     *fakeSequence
	confounding  *fakeConfounding
	measurements *fakeMeasurements
	publisher    *recordingPublisher
	metrics      *countingMetrics
	service      *SampleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	contact := func(name string) project.Contact {
		c, err := project.NewContact(name, name+"@example.org")
		require.NoError(t, err)
		return c
	}
	p, err := project.NewProject(project.MustParseCode("Q2TEST"), "Plant stress", "Study stress response", contact("pi"), contact("pm"))
	require.NoError(t, err)

	exp, err := experiment.NewExperiment(p.ID, "Leaves", []ontology.Term{human}, []ontology.Term{blood}, []ontology.Term{rna})
	require.NoError(t, err)
	require.NoError(t, exp.AddVariable("genotype", "", []string{"wt", "mut"}))
	group, err := exp.AddGroup("wild type", 3, []experiment.Level{{VariableName: "genotype", Value: experiment.Value{Value: "wt"}}})
	require.NoError(t, err)

	confounding := newFakeConfounding()
	confounder, err := experiment.NewConfoundingVariable(exp.ID, "age")
	require.NoError(t, err)
	require.NoError(t, confounding.SaveVariable(context.Background(), confounder))

	f := &fixture{
		project:      p,
		experiment:   exp,
		group:        group,
		confounder:   confounder,
		projects:     &fakeProjects{byID: map[uuid.UUID]*project.Project{p.ID: p}},
		samples:      newFakeSamples(),
		batches:      newFakeBatches(),
		sequence:     &fakeSequence{},
		confounding:  confounding,
		measurements: &fakeMeasurements{withData: make(map[uuid.UUID]bool)},
		publisher:    &recordingPublisher{},
		metrics:      &countingMetrics{},
	}
	experiments := &fakeExperiments{byID: map[uuid.UUID]*experiment.Experiment{exp.ID: exp}}
	terms := &fakeTerms{terms: map[string]ontology.Term{
		"NCBITaxon:9606": human,
		"BTO:0000089":    blood,
		"CHEBI:33697":    rna,
	}}
	validation := NewValidation(experiments, confounding, f.samples, terms)
	f.service = NewSampleService(f.projects, f.samples, f.batches, f.sequence, confounding, f.measurements,
		validation, f.publisher, f.metrics, zap.NewNop())
	f.service.conflictWait = 0
	return f
}

func (f *fixture) row(label string) SampleMetadata {
	return SampleMetadata{
		ExperimentID:   f.experiment.ID,
		Label:          label,
		Condition:      "genotype: wt",
		Species:        "Homo sapiens [NCBITaxon:9606]",
		Specimen:       "blood [BTO:0000089]",
		Analyte:        "RNA [CHEBI:33697]",
		AnalysisMethod: "RNA-SEQ",
	}
}

func (f *fixture) register(t *testing.T, labels ...string) *RegisteredBatch {
	t.Helper()
	rows := make([]SampleMetadata, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, f.row(l))
	}
	res, err := f.service.RegisterSamples(context.Background(), f.project.ID, RegisterBatchRequest{
		Batch:   BatchInput{Label: "batch 1"},
		Samples: rows,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) sampleByCode(t *testing.T, code string) *sample.Sample {
	t.Helper()
	for _, s := range f.samples.byID {
		if s.Code.String() == code {
			return s
		}
	}
	t.Fatalf("sample %s not stored", code)
	return nil
}
