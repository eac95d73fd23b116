package measurement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	novaSeq  = "EFO:0008637"
	orbitrap = "MS:1002732"
	qbicROR  = "https://ror.org/00v34f693"
)

type fakeMeasurements struct {
	ngs     map[string]*measurement.NGSMeasurement
	pxp     map[string]*measurement.ProteomicsMeasurement
	saveErr error
	deleted []uuid.UUID
}

func newFakeMeasurements() *fakeMeasurements {
	return &fakeMeasurements{
		ngs: make(map[string]*measurement.NGSMeasurement),
		pxp: make(map[string]*measurement.ProteomicsMeasurement),
	}
}

func (r *fakeMeasurements) SaveNGS(_ context.Context, ms ...*measurement.NGSMeasurement) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, m := range ms {
		r.ngs[m.Code.String()] = m
	}
	return nil
}

func (r *fakeMeasurements) SavePxP(_ context.Context, ms ...*measurement.ProteomicsMeasurement) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, m := range ms {
		r.pxp[m.Code.String()] = m
	}
	return nil
}

func (r *fakeMeasurements) FindNGS(_ context.Context, id uuid.UUID) (*measurement.NGSMeasurement, error) {
	for _, m := range r.ngs {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMeasurements) FindPxP(_ context.Context, id uuid.UUID) (*measurement.ProteomicsMeasurement, error) {
	for _, m := range r.pxp {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMeasurements) FindNGSByCode(_ context.Context, code measurement.Code) (*measurement.NGSMeasurement, error) {
	m, ok := r.ngs[code.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *fakeMeasurements) FindPxPByCode(_ context.Context, code measurement.Code) (*measurement.ProteomicsMeasurement, error) {
	m, ok := r.pxp[code.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *fakeMeasurements) FindNGSByProject(_ context.Context, projectID uuid.UUID, _ shared.Filter) ([]measurement.NGSMeasurement, error) {
	var out []measurement.NGSMeasurement
	for _, m := range r.ngs {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMeasurements) FindPxPByProject(_ context.Context, projectID uuid.UUID, _ shared.Filter) ([]measurement.ProteomicsMeasurement, error) {
	var out []measurement.ProteomicsMeasurement
	for _, m := range r.pxp {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMeasurements) ExistsCode(_ context.Context, code measurement.Code) (bool, error) {
	_, ngs := r.ngs[code.String()]
	_, pxp := r.pxp[code.String()]
	return ngs || pxp, nil
}

func (r *fakeMeasurements) CountBySampleIDs(_ context.Context, sampleIDs []uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.all() {
		for _, id := range m.SampleIDs {
			for _, wanted := range sampleIDs {
				if id == wanted {
					n++
				}
			}
		}
	}
	return n, nil
}

func (r *fakeMeasurements) FindByIDs(_ context.Context, ids []uuid.UUID) ([]measurement.Measurement, error) {
	var out []measurement.Measurement
	for _, m := range r.all() {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeMeasurements) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		for code, m := range r.ngs {
			if m.ID == id {
				delete(r.ngs, code)
			}
		}
		for code, m := range r.pxp {
			if m.ID == id {
				delete(r.pxp, code)
			}
		}
	}
	r.deleted = append(r.deleted, ids...)
	return nil
}

func (r *fakeMeasurements) all() []measurement.Measurement {
	var out []measurement.Measurement
	for _, m := range r.ngs {
		out = append(out, m.Measurement)
	}
	for _, m := range r.pxp {
		out = append(out, m.Measurement)
	}
	return out
}

type fakeSamples struct {
	byCode map[string]sample.Sample
}

func (f *fakeSamples) FindByCodes(_ context.Context, codes []sample.Code) ([]sample.Sample, error) {
	var out []sample.Sample
	for _, c := range codes {
		if s, ok := f.byCode[c.String()]; ok {
			out = append(out, s)
		}
	}
	return out, nil
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

type fakeOrganisations struct {
	known map[string]string
}

func (f *fakeOrganisations) Resolve(_ context.Context, iri string) (measurement.Organisation, error) {
	label, ok := f.known[iri]
	if !ok {
		return measurement.Organisation{}, ErrUnknownOrganisation
	}
	return measurement.Organisation{IRI: iri, Label: label}, nil
}

type fakeRawData struct {
	counts map[string]int64
}

func (f *fakeRawData) CountByMeasurementCodes(_ context.Context, codes []string) (int64, error) {
	var n int64
	for _, c := range codes {
		n += f.counts[c]
	}
	return n, nil
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
	registered map[string]int
}

func (m *countingMetrics) MeasurementsRegistered(_ context.Context, domain string, count int) {
	m.registered[domain] += count
}

type fixture struct {
	svc          *MeasurementService
	repo         *fakeMeasurements
	samples      *fakeSamples
	rawData      *fakeRawData
	publisher    *recordingPublisher
	metrics      *countingMetrics
	projectID    uuid.UUID
	experimentID uuid.UUID
	codes        []string
}

// newFixture registers four samples of project Q2TEST, the last one in a
// second experiment, and one sample of another project
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:         newFakeMeasurements(),
		samples:      &fakeSamples{byCode: make(map[string]sample.Sample)},
		rawData:      &fakeRawData{counts: make(map[string]int64)},
		publisher:    &recordingPublisher{},
		metrics:      &countingMetrics{registered: make(map[string]int)},
		projectID:    uuid.New(),
		experimentID: uuid.New(),
	}
	otherExperiment := uuid.New()
	for n := 1; n <= 4; n++ {
		code, err := sample.NewCode(project.MustParseCode("Q2TEST"), n)
		require.NoError(t, err)
		experimentID := f.experimentID
		if n == 4 {
			experimentID = otherExperiment
		}
		f.samples.byCode[code.String()] = sample.Sample{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Code:              code,
			ProjectID:         f.projectID,
			ExperimentID:      experimentID,
		}
		f.codes = append(f.codes, code.String())
	}
	foreign, err := sample.NewCode(project.MustParseCode("Q2OTHR"), 1)
	require.NoError(t, err)
	f.samples.byCode[foreign.String()] = sample.Sample{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              foreign,
		ProjectID:         uuid.New(),
		ExperimentID:      uuid.New(),
	}
	f.codes = append(f.codes, foreign.String())

	terms := &fakeTerms{terms: map[string]ontology.Term{
		novaSeq:  {OntologyAbbreviation: "efo", Label: "Illumina NovaSeq 6000", Name: "EFO_0008637", ClassIRI: "http://www.ebi.ac.uk/efo/EFO_0008637"},
		orbitrap: {OntologyAbbreviation: "ms", Label: "Orbitrap Exploris 480", Name: "MS_1002732", ClassIRI: "http://purl.obolibrary.org/obo/MS_1002732"},
	}}
	orgs := &fakeOrganisations{known: map[string]string{qbicROR: "University of Tübingen"}}
	f.svc = NewMeasurementService(f.repo, f.samples, terms, orgs, f.rawData, f.publisher, f.metrics, zap.NewNop())
	return f
}

func (f *fixture) ngsRow(pool string, codes ...string) measurement.NGSMetadata {
	entries := make([]measurement.NGSSampleEntry, 0, len(codes))
	for _, c := range codes {
		entries = append(entries, measurement.NGSSampleEntry{SampleCode: c, Label: "lib-" + c})
	}
	return measurement.NGSMetadata{
		Samples:            entries,
		OrganisationID:     qbicROR,
		InstrumentCURIE:    "Illumina NovaSeq 6000 [" + novaSeq + "]",
		Facility:           "QBiC",
		SequencingReadType: "paired-end",
		LibraryKit:         "TruSeq",
		SamplePoolGroup:    pool,
	}
}

func (f *fixture) pxpRow(pool string, codes ...string) measurement.PxPMetadata {
	entries := make([]measurement.PxPSampleEntry, 0, len(codes))
	for _, c := range codes {
		entries = append(entries, measurement.PxPSampleEntry{SampleCode: c, FractionName: "F1"})
	}
	return measurement.PxPMetadata{
		Samples:         entries,
		OrganisationID:  qbicROR,
		InstrumentCURIE: orbitrap,
		Facility:        "Proteome Center",
		DigestionEnzyme: "Trypsin",
		DigestionMethod: "in-gel",
		InjectionVolume: "2.5",
		LCColumn:        "C18",
		LCMSMethod:      "DDA",
		SamplePoolGroup: pool,
	}
}
