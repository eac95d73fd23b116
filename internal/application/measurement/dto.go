package measurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/sample"
)

// Measurement kinds as used in requests and metrics
const (
	KindNGS = "ngs"
	KindPxP = "pxp"
)

// RegisterNGSRequest registers or updates genomics measurements
type RegisterNGSRequest struct {
	Rows []measurement.NGSMetadata `json:"rows" binding:"required,min=1"`
}

// RegisterPxPRequest registers or updates proteomics measurements
type RegisterPxPRequest struct {
	Rows []measurement.PxPMetadata `json:"rows" binding:"required,min=1"`
}

// DeleteRequest deletes measurements by id
type DeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// MeasurementResponse represents a measurement in API responses. Exactly
// one of NGS and PxP is set.
type MeasurementResponse struct {
	ID              uuid.UUID                `json:"id"`
	Code            string                   `json:"code"`
	Kind            string                   `json:"kind"`
	ProjectID       uuid.UUID                `json:"project_id"`
	SampleIDs       []uuid.UUID              `json:"sample_ids"`
	Organisation    measurement.Organisation `json:"organisation"`
	Instrument      ontology.Term            `json:"instrument"`
	Facility        string                   `json:"facility"`
	SamplePoolGroup string                   `json:"sample_pool_group,omitempty"`
	RegisteredAt    time.Time                `json:"registered_at"`
	Version         int                      `json:"version"`
	NGS             *NGSDetails              `json:"ngs,omitempty"`
	PxP             *PxPDetails              `json:"pxp,omitempty"`
}

// NGSDetails holds the genomics specific fields
type NGSDetails struct {
	SequencingReadType    string                            `json:"sequencing_read_type"`
	LibraryKit            string                            `json:"library_kit,omitempty"`
	FlowCell              string                            `json:"flow_cell,omitempty"`
	SequencingRunProtocol string                            `json:"sequencing_run_protocol,omitempty"`
	Samples               []measurement.NGSSpecificMetadata `json:"samples"`
}

// PxPDetails holds the proteomics specific fields
type PxPDetails struct {
	DigestionEnzyme        string                            `json:"digestion_enzyme"`
	DigestionMethod        string                            `json:"digestion_method"`
	EnrichmentMethod       string                            `json:"enrichment_method,omitempty"`
	InjectionVolume        float64                           `json:"injection_volume"`
	LCColumn               string                            `json:"lc_column"`
	LCMSMethod             string                            `json:"lcms_method"`
	LabelingType           string                            `json:"labeling_type,omitempty"`
	TechnicalReplicateName string                            `json:"technical_replicate_name,omitempty"`
	Samples                []measurement.PxPSpecificMetadata `json:"samples"`
}

// ImportResponse reports the outcome of a measurement sheet import
type ImportResponse struct {
	Kind         string                `json:"kind"`
	Rows         int                   `json:"rows"`
	Measurements []MeasurementResponse `json:"measurements"`
}

// ValidationResponse is the outcome of validating rows without registering them
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Rows     int      `json:"rows"`
	Failures []string `json:"failures,omitempty"`
}

// ToValidationResponse converts a validation result
func ToValidationResponse(r sample.ValidationResult) ValidationResponse {
	return ValidationResponse{Valid: !r.ContainsFailures(), Rows: r.ValidatedCount, Failures: r.Failures}
}

func baseResponse(m *measurement.Measurement, kind string) MeasurementResponse {
	return MeasurementResponse{
		ID:              m.ID,
		Code:            m.Code.String(),
		Kind:            kind,
		ProjectID:       m.ProjectID,
		SampleIDs:       m.SampleIDs,
		Organisation:    m.Organisation,
		Instrument:      m.Instrument,
		Facility:        m.Facility,
		SamplePoolGroup: m.SamplePoolGroup,
		RegisteredAt:    m.RegisteredAt,
		Version:         m.GetVersion(),
	}
}

// ToNGSResponse converts a genomics measurement to its response
func ToNGSResponse(m *measurement.NGSMeasurement) MeasurementResponse {
	resp := baseResponse(&m.Measurement, KindNGS)
	resp.NGS = &NGSDetails{
		SequencingReadType:    m.SequencingReadType,
		LibraryKit:            m.LibraryKit,
		FlowCell:              m.FlowCell,
		SequencingRunProtocol: m.SequencingRunProtocol,
		Samples:               m.Specific,
	}
	return resp
}

// ToPxPResponse converts a proteomics measurement to its response
func ToPxPResponse(m *measurement.ProteomicsMeasurement) MeasurementResponse {
	resp := baseResponse(&m.Measurement, KindPxP)
	resp.PxP = &PxPDetails{
		DigestionEnzyme:        m.DigestionEnzyme,
		DigestionMethod:        m.DigestionMethod,
		EnrichmentMethod:       m.EnrichmentMethod,
		InjectionVolume:        m.InjectionVolume,
		LCColumn:               m.LCColumn,
		LCMSMethod:             m.LCMSMethod,
		LabelingType:           m.LabelingType,
		TechnicalReplicateName: m.TechnicalReplicateName,
		Samples:                m.Specific,
	}
	return resp
}
