package sample

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/sample"
)

// SampleMetadata is one row of a sample sheet. Term columns use the
// "label [CURIE]" form, the condition uses "var: value unit; var2: value".
type SampleMetadata struct {
	SampleCode          string               `json:"sample_code,omitempty"`
	ExperimentID        uuid.UUID            `json:"experiment_id"`
	Label               string               `json:"label"`
	BiologicalReplicate string               `json:"biological_replicate,omitempty"`
	Condition           string               `json:"condition"`
	Species             string               `json:"species"`
	Specimen            string               `json:"specimen"`
	Analyte             string               `json:"analyte"`
	AnalysisMethod      string               `json:"analysis_method"`
	Comment             string               `json:"comment,omitempty"`
	ConfoundingLevels   map[uuid.UUID]string `json:"confounding_variables,omitempty"`
}

// BatchInput names a batch
type BatchInput struct {
	Label string `json:"label" binding:"required"`
	Pilot bool   `json:"pilot"`
}

// RegisterBatchRequest registers a new batch with its samples
type RegisterBatchRequest struct {
	Batch   BatchInput       `json:"batch"`
	Samples []SampleMetadata `json:"samples" binding:"required,min=1"`
}

// EditBatchRequest changes a batch: new rows are registered, edited rows are
// matched by sample code, deleted codes are removed
type EditBatchRequest struct {
	Label   string           `json:"label" binding:"required"`
	Pilot   bool             `json:"pilot"`
	Created []SampleMetadata `json:"created,omitempty"`
	Edited  []SampleMetadata `json:"edited,omitempty"`
	Deleted []string         `json:"deleted,omitempty"`
}

// SampleResponse represents a sample in API responses
type SampleResponse struct {
	ID                  uuid.UUID     `json:"id"`
	Code                string        `json:"code"`
	ProjectID           uuid.UUID     `json:"project_id"`
	ExperimentID        uuid.UUID     `json:"experiment_id"`
	ExperimentalGroupID uuid.UUID     `json:"experimental_group_id"`
	BatchID             uuid.UUID     `json:"batch_id"`
	Label               string        `json:"label"`
	BiologicalReplicate string        `json:"biological_replicate,omitempty"`
	Species             ontology.Term `json:"species"`
	Specimen            ontology.Term `json:"specimen"`
	Analyte             ontology.Term `json:"analyte"`
	AnalysisMethod      string        `json:"analysis_method"`
	Comment             string        `json:"comment,omitempty"`
}

// ToSampleResponse converts a sample
func ToSampleResponse(s *sample.Sample) SampleResponse {
	return SampleResponse{
		ID:                  s.ID,
		Code:                s.Code.String(),
		ProjectID:           s.ProjectID,
		ExperimentID:        s.ExperimentID,
		ExperimentalGroupID: s.ExperimentalGroupID,
		BatchID:             s.BatchID,
		Label:               s.Label,
		BiologicalReplicate: s.BiologicalReplicate,
		Species:             s.Origin.Species,
		Specimen:            s.Origin.Specimen,
		Analyte:             s.Origin.Analyte,
		AnalysisMethod:      s.AnalysisMethod.Abbreviation,
		Comment:             s.Comment,
	}
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID        uuid.UUID   `json:"id"`
	ProjectID uuid.UUID   `json:"project_id"`
	Label     string      `json:"label"`
	Pilot     bool        `json:"pilot"`
	SampleIDs []uuid.UUID `json:"sample_ids"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ToBatchResponse converts a batch
func ToBatchResponse(b *sample.Batch) BatchResponse {
	return BatchResponse{
		ID:        b.ID,
		ProjectID: b.ProjectID,
		Label:     b.Label,
		Pilot:     b.Pilot,
		SampleIDs: b.SampleIDs,
		UpdatedAt: b.UpdatedAt,
	}
}

// RegisteredBatch is returned after a successful registration
type RegisteredBatch struct {
	BatchID uuid.UUID `json:"batch_id"`
	Samples []string  `json:"sample_codes"`
}

// QualityControlUpload is one uploaded quality control file
type QualityControlUpload struct {
	FileName     string
	ContentType  string
	ExperimentID *uuid.UUID
	Content      []byte
}

// QualityControlResponse represents a quality control record
type QualityControlResponse struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ExperimentID *uuid.UUID `json:"experiment_id,omitempty"`
	FileName     string     `json:"file_name"`
	ContentType  string     `json:"content_type"`
	Size         int64      `json:"size"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	DownloadURL  string     `json:"download_url,omitempty"`
	URLExpiresAt *time.Time `json:"url_expires_at,omitempty"`
}

// ToQualityControlResponse converts a quality control record
func ToQualityControlResponse(qc *sample.QualityControl) QualityControlResponse {
	return QualityControlResponse{
		ID:           qc.ID,
		ProjectID:    qc.ProjectID,
		ExperimentID: qc.ExperimentID,
		FileName:     qc.FileName,
		ContentType:  qc.ContentType,
		Size:         qc.Size,
		UploadedAt:   qc.UploadedAt,
	}
}
