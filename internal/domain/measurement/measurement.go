package measurement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// ErrMissingSample is returned when a measurement references no sample
var ErrMissingSample = shared.NewDomainError("MISSING_ASSOCIATED_SAMPLE",
	"A measurement must contain at least one sample reference. Provided: none")

// Measurement holds what all measurement kinds share
type Measurement struct {
	shared.BaseAggregateRoot
	Code            Code
	ProjectID       uuid.UUID
	SampleIDs       []uuid.UUID
	Organisation    Organisation
	Instrument      ontology.Term
	Facility        string
	SamplePoolGroup string
	RegisteredAt    time.Time
}

func newMeasurement(code Code, projectID uuid.UUID, sampleIDs []uuid.UUID, org Organisation, instrument ontology.Term, facility string) (Measurement, error) {
	if len(sampleIDs) == 0 {
		return Measurement{}, ErrMissingSample
	}
	if projectID == uuid.Nil {
		return Measurement{}, shared.NewDomainError("INVALID_MEASUREMENT", "Measurement needs a project")
	}
	m := Measurement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		ProjectID:         projectID,
		SampleIDs:         append([]uuid.UUID(nil), sampleIDs...),
		Organisation:      org,
		Instrument:        instrument,
		Facility:          strings.TrimSpace(facility),
	}
	m.RegisteredAt = m.CreatedAt
	return m, nil
}

// IsPooled reports whether more than one sample was measured together
func (m *Measurement) IsPooled() bool {
	return len(m.SampleIDs) > 1
}

// SetSamplePoolGroup assigns the pool the measurement belongs to
func (m *Measurement) SetSamplePoolGroup(group string) {
	m.SamplePoolGroup = strings.TrimSpace(group)
}

func (m *Measurement) updated() {
	m.Touch()
	m.IncrementVersion()
	m.AddDomainEvent(NewMeasurementUpdatedEvent(m))
}

// NGSSpecificMetadata holds the per-sample information of a genomics measurement
type NGSSpecificMetadata struct {
	SampleID uuid.UUID `json:"sample_id"`
	Label    string    `json:"label,omitempty"`
	IndexI7  string    `json:"index_i7,omitempty"`
	IndexI5  string    `json:"index_i5,omitempty"`
	Comment  string    `json:"comment,omitempty"`
}

// NGSMethod describes how a genomics measurement was performed
type NGSMethod struct {
	Instrument            ontology.Term
	Facility              string
	SequencingReadType    string
	LibraryKit            string
	FlowCell              string
	SequencingRunProtocol string
}

// NGSMeasurement is a genomics measurement
type NGSMeasurement struct {
	Measurement
	SequencingReadType    string
	LibraryKit            string
	FlowCell              string
	SequencingRunProtocol string
	Specific              []NGSSpecificMetadata
}

// NewNGSMeasurement creates a genomics measurement
func NewNGSMeasurement(code Code, projectID uuid.UUID, sampleIDs []uuid.UUID, org Organisation, method NGSMethod, specific []NGSSpecificMetadata) (*NGSMeasurement, error) {
	if !code.IsNGS() {
		return nil, ErrInvalidMeasurementCode.Withf("Genomics measurements need an NGS code")
	}
	base, err := newMeasurement(code, projectID, sampleIDs, org, method.Instrument, method.Facility)
	if err != nil {
		return nil, err
	}
	m := &NGSMeasurement{Measurement: base, Specific: specific}
	m.applyMethod(method)
	m.AddDomainEvent(NewMeasurementRegisteredEvent(&m.Measurement))
	return m, nil
}

// Update replaces the method and per-sample information
func (m *NGSMeasurement) Update(org Organisation, method NGSMethod, specific []NGSSpecificMetadata) {
	m.Organisation = org
	m.Instrument = method.Instrument
	m.Facility = strings.TrimSpace(method.Facility)
	m.applyMethod(method)
	m.Specific = specific
	m.updated()
}

func (m *NGSMeasurement) applyMethod(method NGSMethod) {
	m.SequencingReadType = strings.TrimSpace(method.SequencingReadType)
	m.LibraryKit = strings.TrimSpace(method.LibraryKit)
	m.FlowCell = strings.TrimSpace(method.FlowCell)
	m.SequencingRunProtocol = strings.TrimSpace(method.SequencingRunProtocol)
}

// PxPSpecificMetadata holds the per-sample information of a proteomics measurement
type PxPSpecificMetadata struct {
	SampleID     uuid.UUID `json:"sample_id"`
	Label        string    `json:"label,omitempty"`
	FractionName string    `json:"fraction_name,omitempty"`
	Comment      string    `json:"comment,omitempty"`
}

// PxPMethod describes how a proteomics measurement was performed
type PxPMethod struct {
	Instrument       ontology.Term
	Facility         string
	DigestionEnzyme  string
	DigestionMethod  string
	EnrichmentMethod string
	InjectionVolume  float64
	LCColumn         string
	LCMSMethod       string
	LabelingType     string
}

// ProteomicsMeasurement is a mass spectrometry measurement
type ProteomicsMeasurement struct {
	Measurement
	DigestionEnzyme        string
	DigestionMethod        string
	EnrichmentMethod       string
	InjectionVolume        float64
	LCColumn               string
	LCMSMethod             string
	LabelingType           string
	TechnicalReplicateName string
	Specific               []PxPSpecificMetadata
}

// NewProteomicsMeasurement creates a proteomics measurement
func NewProteomicsMeasurement(code Code, projectID uuid.UUID, sampleIDs []uuid.UUID, org Organisation, method PxPMethod, specific []PxPSpecificMetadata) (*ProteomicsMeasurement, error) {
	if !code.IsMS() {
		return nil, ErrInvalidMeasurementCode.Withf("Proteomics measurements need an MS code")
	}
	if method.InjectionVolume < 0 {
		return nil, shared.NewDomainError("INVALID_MEASUREMENT", "Injection volume must not be negative")
	}
	base, err := newMeasurement(code, projectID, sampleIDs, org, method.Instrument, method.Facility)
	if err != nil {
		return nil, err
	}
	m := &ProteomicsMeasurement{Measurement: base, Specific: specific}
	m.applyMethod(method)
	m.AddDomainEvent(NewMeasurementRegisteredEvent(&m.Measurement))
	return m, nil
}

// Update replaces the method and per-sample information
func (m *ProteomicsMeasurement) Update(org Organisation, method PxPMethod, specific []PxPSpecificMetadata) error {
	if method.InjectionVolume < 0 {
		return shared.NewDomainError("INVALID_MEASUREMENT", "Injection volume must not be negative")
	}
	m.Organisation = org
	m.Instrument = method.Instrument
	m.Facility = strings.TrimSpace(method.Facility)
	m.applyMethod(method)
	m.Specific = specific
	m.updated()
	return nil
}

// SetTechnicalReplicate names the technical replicate of the measurement
func (m *ProteomicsMeasurement) SetTechnicalReplicate(name string) {
	m.TechnicalReplicateName = strings.TrimSpace(name)
}

func (m *ProteomicsMeasurement) applyMethod(method PxPMethod) {
	m.DigestionEnzyme = strings.TrimSpace(method.DigestionEnzyme)
	m.DigestionMethod = strings.TrimSpace(method.DigestionMethod)
	m.EnrichmentMethod = strings.TrimSpace(method.EnrichmentMethod)
	m.InjectionVolume = method.InjectionVolume
	m.LCColumn = strings.TrimSpace(method.LCColumn)
	m.LCMSMethod = strings.TrimSpace(method.LCMSMethod)
	m.LabelingType = strings.TrimSpace(method.LabelingType)
}
