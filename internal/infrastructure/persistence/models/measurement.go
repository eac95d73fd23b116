package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// Measurement domains stored in measurement_samples
const (
	MeasurementDomainNGS = "NGS"
	MeasurementDomainPxP = "PXP"
)

// MeasurementColumns holds the columns shared by genomics and proteomics measurements
type MeasurementColumns struct {
	AggregateModel
	Code              string        `gorm:"type:varchar(40);not null;uniqueIndex"`
	ProjectID         uuid.UUID     `gorm:"type:uuid;not null;index"`
	SampleIDs         []uuid.UUID   `gorm:"type:text;serializer:json"`
	OrganisationIRI   string        `gorm:"type:varchar(255)"`
	OrganisationLabel string        `gorm:"type:varchar(255)"`
	Instrument        ontology.Term `gorm:"type:text;serializer:json"`
	Facility          string        `gorm:"type:varchar(255)"`
	SamplePoolGroup   string        `gorm:"type:varchar(255)"`
	RegisteredAt      time.Time     `gorm:"not null"`
}

func (m *MeasurementColumns) toDomain() (measurement.Measurement, error) {
	code, err := measurement.ParseCode(m.Code)
	if err != nil {
		return measurement.Measurement{}, err
	}
	return measurement.Measurement{
		BaseAggregateRoot: m.Root(),
		Code:              code,
		ProjectID:         m.ProjectID,
		SampleIDs:         append([]uuid.UUID{}, m.SampleIDs...),
		Organisation:      measurement.Organisation{IRI: m.OrganisationIRI, Label: m.OrganisationLabel},
		Instrument:        m.Instrument,
		Facility:          m.Facility,
		SamplePoolGroup:   m.SamplePoolGroup,
		RegisteredAt:      m.RegisteredAt,
	}, nil
}

func (m *MeasurementColumns) fromDomain(d measurement.Measurement) {
	m.SetRoot(d.BaseAggregateRoot)
	m.Code = d.Code.String()
	m.ProjectID = d.ProjectID
	m.SampleIDs = append([]uuid.UUID{}, d.SampleIDs...)
	m.OrganisationIRI = d.Organisation.IRI
	m.OrganisationLabel = d.Organisation.Label
	m.Instrument = d.Instrument
	m.Facility = d.Facility
	m.SamplePoolGroup = d.SamplePoolGroup
	m.RegisteredAt = d.RegisteredAt
}

// Root exposes the aggregate root of the measurement
func (m *MeasurementColumns) Root() shared.BaseAggregateRoot {
	return m.Root()
}

// NGSMeasurementModel is the persistence model for genomics measurements
type NGSMeasurementModel struct {
	MeasurementColumns
	SequencingReadType    string                            `gorm:"type:varchar(255)"`
	LibraryKit            string                            `gorm:"type:varchar(255)"`
	FlowCell              string                            `gorm:"type:varchar(255)"`
	SequencingRunProtocol string                            `gorm:"type:varchar(255)"`
	Specific              []measurement.NGSSpecificMetadata `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (NGSMeasurementModel) TableName() string {
	return "ngs_measurements"
}

// ToDomain converts the persistence model to a domain NGSMeasurement
func (m *NGSMeasurementModel) ToDomain() (*measurement.NGSMeasurement, error) {
	base, err := m.toDomain()
	if err != nil {
		return nil, err
	}
	return &measurement.NGSMeasurement{
		Measurement:           base,
		SequencingReadType:    m.SequencingReadType,
		LibraryKit:            m.LibraryKit,
		FlowCell:              m.FlowCell,
		SequencingRunProtocol: m.SequencingRunProtocol,
		Specific:              append([]measurement.NGSSpecificMetadata{}, m.Specific...),
	}, nil
}

// NGSMeasurementModelFromDomain creates a persistence model from a domain NGSMeasurement
func NGSMeasurementModelFromDomain(d *measurement.NGSMeasurement) *NGSMeasurementModel {
	m := &NGSMeasurementModel{
		SequencingReadType:    d.SequencingReadType,
		LibraryKit:            d.LibraryKit,
		FlowCell:              d.FlowCell,
		SequencingRunProtocol: d.SequencingRunProtocol,
		Specific:              d.Specific,
	}
	m.fromDomain(d.Measurement)
	return m
}

// PxPMeasurementModel is the persistence model for proteomics measurements
type PxPMeasurementModel struct {
	MeasurementColumns
	DigestionEnzyme        string                            `gorm:"type:varchar(255)"`
	DigestionMethod        string                            `gorm:"type:varchar(255)"`
	EnrichmentMethod       string                            `gorm:"type:varchar(255)"`
	InjectionVolume        float64                           `gorm:"not null;default:0"`
	LCColumn               string                            `gorm:"column:lc_column;type:varchar(255)"`
	LCMSMethod             string                            `gorm:"column:lcms_method;type:varchar(255)"`
	LabelingType           string                            `gorm:"type:varchar(255)"`
	TechnicalReplicateName string                            `gorm:"type:varchar(255)"`
	Specific               []measurement.PxPSpecificMetadata `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (PxPMeasurementModel) TableName() string {
	return "pxp_measurements"
}

// ToDomain converts the persistence model to a domain ProteomicsMeasurement
func (m *PxPMeasurementModel) ToDomain() (*measurement.ProteomicsMeasurement, error) {
	base, err := m.toDomain()
	if err != nil {
		return nil, err
	}
	return &measurement.ProteomicsMeasurement{
		Measurement:            base,
		DigestionEnzyme:        m.DigestionEnzyme,
		DigestionMethod:        m.DigestionMethod,
		EnrichmentMethod:       m.EnrichmentMethod,
		InjectionVolume:        m.InjectionVolume,
		LCColumn:               m.LCColumn,
		LCMSMethod:             m.LCMSMethod,
		LabelingType:           m.LabelingType,
		TechnicalReplicateName: m.TechnicalReplicateName,
		Specific:               append([]measurement.PxPSpecificMetadata{}, m.Specific...),
	}, nil
}

// PxPMeasurementModelFromDomain creates a persistence model from a domain ProteomicsMeasurement
func PxPMeasurementModelFromDomain(d *measurement.ProteomicsMeasurement) *PxPMeasurementModel {
	m := &PxPMeasurementModel{
		DigestionEnzyme:        d.DigestionEnzyme,
		DigestionMethod:        d.DigestionMethod,
		EnrichmentMethod:       d.EnrichmentMethod,
		InjectionVolume:        d.InjectionVolume,
		LCColumn:               d.LCColumn,
		LCMSMethod:             d.LCMSMethod,
		LabelingType:           d.LabelingType,
		TechnicalReplicateName: d.TechnicalReplicateName,
		Specific:               d.Specific,
	}
	m.fromDomain(d.Measurement)
	return m
}

// MeasurementSampleModel links measurements of either domain to the measured samples
type MeasurementSampleModel struct {
	MeasurementID uuid.UUID `gorm:"type:uuid;primaryKey"`
	SampleID      uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	ProjectID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Domain        string    `gorm:"type:varchar(8);not null"`
}

// TableName returns the table name for GORM
func (MeasurementSampleModel) TableName() string {
	return "measurement_samples"
}

// RawDataModel records a dataset uploaded for a measurement
type RawDataModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeasurementCode string    `gorm:"type:varchar(40);not null;index"`
	FileName        string    `gorm:"type:varchar(255);not null"`
	Size            int64     `gorm:"not null;default:0"`
	RegisteredAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RawDataModel) TableName() string {
	return "raw_data"
}
