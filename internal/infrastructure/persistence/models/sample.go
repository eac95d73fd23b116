package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/sample"
)

// SampleModel is the persistence model for the Sample aggregate
type SampleModel struct {
	AggregateModel
	Code                string        `gorm:"type:varchar(32);not null;uniqueIndex"`
	ProjectID           uuid.UUID     `gorm:"type:uuid;not null;index"`
	ExperimentID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	ExperimentalGroupID uuid.UUID     `gorm:"type:uuid"`
	BatchID             uuid.UUID     `gorm:"type:uuid;not null;index"`
	Label               string        `gorm:"type:varchar(255);not null"`
	BiologicalReplicate string        `gorm:"type:varchar(255)"`
	Species             ontology.Term `gorm:"type:text;serializer:json"`
	Specimen            ontology.Term `gorm:"type:text;serializer:json"`
	Analyte             ontology.Term `gorm:"type:text;serializer:json"`
	AnalysisMethod      string        `gorm:"type:varchar(64)"`
	Comment             string        `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SampleModel) TableName() string {
	return "samples"
}

// ToDomain converts the persistence model to a domain Sample
func (m *SampleModel) ToDomain() *sample.Sample {
	s := &sample.Sample{
		BaseAggregateRoot:   m.Root(),
		Code:                sample.Code(m.Code),
		ProjectID:           m.ProjectID,
		ExperimentID:        m.ExperimentID,
		ExperimentalGroupID: m.ExperimentalGroupID,
		BatchID:             m.BatchID,
		Label:               m.Label,
		BiologicalReplicate: m.BiologicalReplicate,
		Origin:              sample.Origin{Species: m.Species, Specimen: m.Specimen, Analyte: m.Analyte},
		Comment:             m.Comment,
	}
	if m.AnalysisMethod != "" {
		if method, err := sample.ParseAnalysisMethod(m.AnalysisMethod); err == nil {
			s.AnalysisMethod = method
		}
	}
	return s
}

// FromDomain populates the persistence model from a domain Sample
func (m *SampleModel) FromDomain(s *sample.Sample) {
	m.SetRoot(s.BaseAggregateRoot)
	m.Code = s.Code.String()
	m.ProjectID = s.ProjectID
	m.ExperimentID = s.ExperimentID
	m.ExperimentalGroupID = s.ExperimentalGroupID
	m.BatchID = s.BatchID
	m.Label = s.Label
	m.BiologicalReplicate = s.BiologicalReplicate
	m.Species = s.Origin.Species
	m.Specimen = s.Origin.Specimen
	m.Analyte = s.Origin.Analyte
	m.AnalysisMethod = s.AnalysisMethod.Abbreviation
	m.Comment = s.Comment
}

// SampleModelFromDomain creates a new persistence model from a domain Sample
func SampleModelFromDomain(s *sample.Sample) *SampleModel {
	m := &SampleModel{}
	m.FromDomain(s)
	return m
}

// BatchModel is the persistence model for the Batch aggregate
type BatchModel struct {
	AggregateModel
	ProjectID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Label     string      `gorm:"type:varchar(255);not null"`
	Pilot     bool        `gorm:"not null;default:false"`
	SampleIDs []uuid.UUID `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch
func (m *BatchModel) ToDomain() *sample.Batch {
	return &sample.Batch{
		BaseAggregateRoot: m.Root(),
		ProjectID:         m.ProjectID,
		Label:             m.Label,
		Pilot:             m.Pilot,
		SampleIDs:         append([]uuid.UUID{}, m.SampleIDs...),
	}
}

// FromDomain populates the persistence model from a domain Batch
func (m *BatchModel) FromDomain(b *sample.Batch) {
	m.SetRoot(b.BaseAggregateRoot)
	m.ProjectID = b.ProjectID
	m.Label = b.Label
	m.Pilot = b.Pilot
	m.SampleIDs = append([]uuid.UUID{}, b.SampleIDs...)
}

// BatchModelFromDomain creates a new persistence model from a domain Batch
func BatchModelFromDomain(b *sample.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}

// SampleStatisticModel tracks the last sample number handed out per project
type SampleStatisticModel struct {
	ProjectID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastNumber int       `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (SampleStatisticModel) TableName() string {
	return "sample_statistics"
}

// QualityControlModel stores metadata of an uploaded quality control report
type QualityControlModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProjectID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ExperimentID *uuid.UUID `gorm:"type:uuid"`
	FileName     string     `gorm:"type:varchar(255);not null"`
	StorageKey   string     `gorm:"type:varchar(512);not null"`
	ContentType  string     `gorm:"type:varchar(128)"`
	Size         int64      `gorm:"not null;default:0"`
	UploadedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QualityControlModel) TableName() string {
	return "quality_controls"
}

// ToDomain converts the model to a domain QualityControl
func (m *QualityControlModel) ToDomain() *sample.QualityControl {
	return &sample.QualityControl{
		ID:           m.ID,
		ProjectID:    m.ProjectID,
		ExperimentID: m.ExperimentID,
		FileName:     m.FileName,
		StorageKey:   m.StorageKey,
		ContentType:  m.ContentType,
		Size:         m.Size,
		UploadedAt:   m.UploadedAt,
	}
}

// QualityControlModelFromDomain creates the model of a domain QualityControl
func QualityControlModelFromDomain(qc *sample.QualityControl) *QualityControlModel {
	return &QualityControlModel{
		ID:           qc.ID,
		ProjectID:    qc.ProjectID,
		ExperimentID: qc.ExperimentID,
		FileName:     qc.FileName,
		StorageKey:   qc.StorageKey,
		ContentType:  qc.ContentType,
		Size:         qc.Size,
		UploadedAt:   qc.UploadedAt,
	}
}
