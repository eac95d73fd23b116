package measurement

import (
	"fmt"
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// Metadata is a registration or update row of either measurement kind
type Metadata[T any] interface {
	SampleCodes() []string
	PoolGroup() string
	Merge(other T) (T, error)
}

// MergeByPool merges all rows sharing a non-blank sample pool group into
// one pooled row. Rows without a pool group stay as they are; the order of
// first appearance is kept.
func MergeByPool[T Metadata[T]](rows []T) ([]T, error) {
	merged := make([]T, 0, len(rows))
	poolIndex := make(map[string]int)
	for _, row := range rows {
		pool := row.PoolGroup()
		if pool == "" {
			merged = append(merged, row)
			continue
		}
		i, ok := poolIndex[pool]
		if !ok {
			poolIndex[pool] = len(merged)
			merged = append(merged, row)
			continue
		}
		m, err := merged[i].Merge(row)
		if err != nil {
			return nil, err
		}
		merged[i] = m
	}
	return merged, nil
}

func mergeError(field string) error {
	return shared.NewDomainError("MERGE_FAILED", fmt.Sprintf("Could not merge. Different %s.", field))
}

// NGSSampleEntry is the per-sample part of a genomics metadata row
type NGSSampleEntry struct {
	SampleCode string `json:"sample_code"`
	Label      string `json:"label,omitempty"`
	IndexI7    string `json:"index_i7,omitempty"`
	IndexI5    string `json:"index_i5,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// NGSMetadata is a genomics measurement registration or update row
type NGSMetadata struct {
	MeasurementCode       string           `json:"measurement_code,omitempty"`
	Samples               []NGSSampleEntry `json:"samples"`
	OrganisationID        string           `json:"organisation_id"`
	InstrumentCURIE       string           `json:"instrument_curie"`
	Facility              string           `json:"facility"`
	SequencingReadType    string           `json:"sequencing_read_type"`
	LibraryKit            string           `json:"library_kit,omitempty"`
	FlowCell              string           `json:"flow_cell,omitempty"`
	SequencingRunProtocol string           `json:"sequencing_run_protocol,omitempty"`
	SamplePoolGroup       string           `json:"sample_pool_group,omitempty"`
}

// SampleCodes returns the codes of all referenced samples
func (m NGSMetadata) SampleCodes() []string {
	codes := make([]string, 0, len(m.Samples))
	for _, s := range m.Samples {
		codes = append(codes, strings.TrimSpace(s.SampleCode))
	}
	return codes
}

// PoolGroup returns the trimmed sample pool group
func (m NGSMetadata) PoolGroup() string {
	return strings.TrimSpace(m.SamplePoolGroup)
}

// Merge combines two rows of the same pool; all shared fields must be equal
func (m NGSMetadata) Merge(other NGSMetadata) (NGSMetadata, error) {
	checks := []struct {
		field string
		a, b  string
	}{
		{"Organisation", m.OrganisationID, other.OrganisationID},
		{"Instrument", m.InstrumentCURIE, other.InstrumentCURIE},
		{"sample pool group", m.PoolGroup(), other.PoolGroup()},
		{"facility", m.Facility, other.Facility},
		{"sequencing read type", m.SequencingReadType, other.SequencingReadType},
		{"library kit", m.LibraryKit, other.LibraryKit},
		{"flow cell", m.FlowCell, other.FlowCell},
		{"sequencing run protocol", m.SequencingRunProtocol, other.SequencingRunProtocol},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.a) != strings.TrimSpace(c.b) {
			return NGSMetadata{}, mergeError(c.field)
		}
	}
	merged := m
	merged.Samples = append(append([]NGSSampleEntry(nil), m.Samples...), other.Samples...)
	return merged, nil
}

// PxPSampleEntry is the per-sample part of a proteomics metadata row
type PxPSampleEntry struct {
	SampleCode   string `json:"sample_code"`
	Label        string `json:"label,omitempty"`
	FractionName string `json:"fraction_name,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// PxPMetadata is a proteomics measurement registration or update row
type PxPMetadata struct {
	MeasurementCode  string           `json:"measurement_code,omitempty"`
	Samples          []PxPSampleEntry `json:"samples"`
	OrganisationID   string           `json:"organisation_id"`
	InstrumentCURIE  string           `json:"instrument_curie"`
	Facility         string           `json:"facility"`
	DigestionEnzyme  string           `json:"digestion_enzyme"`
	DigestionMethod  string           `json:"digestion_method"`
	EnrichmentMethod string           `json:"enrichment_method,omitempty"`
	InjectionVolume  string           `json:"injection_volume"`
	LCColumn         string           `json:"lc_column"`
	LCMSMethod       string           `json:"lcms_method"`
	LabelingType     string           `json:"labeling_type,omitempty"`
	SamplePoolGroup  string           `json:"sample_pool_group,omitempty"`
}

// SampleCodes returns the codes of all referenced samples
func (m PxPMetadata) SampleCodes() []string {
	codes := make([]string, 0, len(m.Samples))
	for _, s := range m.Samples {
		codes = append(codes, strings.TrimSpace(s.SampleCode))
	}
	return codes
}

// PoolGroup returns the trimmed sample pool group
func (m PxPMetadata) PoolGroup() string {
	return strings.TrimSpace(m.SamplePoolGroup)
}

// Merge combines two rows of the same pool; all shared fields must be equal
func (m PxPMetadata) Merge(other PxPMetadata) (PxPMetadata, error) {
	checks := []struct {
		field string
		a, b  string
	}{
		{"Organisation", m.OrganisationID, other.OrganisationID},
		{"Instrument", m.InstrumentCURIE, other.InstrumentCURIE},
		{"sample pool group", m.PoolGroup(), other.PoolGroup()},
		{"facility", m.Facility, other.Facility},
		{"digestion enzyme", m.DigestionEnzyme, other.DigestionEnzyme},
		{"digestion method", m.DigestionMethod, other.DigestionMethod},
		{"enrichment method", m.EnrichmentMethod, other.EnrichmentMethod},
		{"injection volume", m.InjectionVolume, other.InjectionVolume},
		{"LC column", m.LCColumn, other.LCColumn},
		{"LCMS method", m.LCMSMethod, other.LCMSMethod},
		{"labeling type", m.LabelingType, other.LabelingType},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.a) != strings.TrimSpace(c.b) {
			return PxPMetadata{}, mergeError(c.field)
		}
	}
	merged := m
	merged.Samples = append(append([]PxPSampleEntry(nil), m.Samples...), other.Samples...)
	return merged, nil
}
