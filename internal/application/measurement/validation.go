package measurement

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/sample"
)

const (
	unknownSampleMessage       = "Unknown sample with sample id %q"
	unknownOrganisationMessage = "The organisation ID does not seem to be a ROR ID: %q"
	unknownInstrumentMessage   = "Unknown instrument id: %q"
	missingSampleMessage       = "A measurement must contain at least one sample reference. Provided: none"
)

// SampleFinder finds samples by their codes
type SampleFinder interface {
	FindByCodes(ctx context.Context, codes []sample.Code) ([]sample.Sample, error)
}

// TermResolver finds ontology terms by CURIE. A nil term without error means
// the term is unknown.
type TermResolver interface {
	FindByCURIE(ctx context.Context, curie string) (*ontology.Term, error)
}

// Validator checks measurement metadata rows before registration. Missing
// mandatory values are reported on their own; references are only checked
// once all mandatory values are present.
type Validator struct {
	samples SampleFinder
	terms   TermResolver
}

// NewValidator creates a new Validator
func NewValidator(samples SampleFinder, terms TermResolver) *Validator {
	return &Validator{samples: samples, terms: terms}
}

type mandatoryField struct {
	name  string
	value string
}

func ngsMandatory(row measurement.NGSMetadata) []mandatoryField {
	return []mandatoryField{
		{"Organisation", row.OrganisationID},
		{"Instrument", row.InstrumentCURIE},
		{"Facility", row.Facility},
		{"Sequencing Read Type", row.SequencingReadType},
	}
}

func pxpMandatory(row measurement.PxPMetadata) []mandatoryField {
	return []mandatoryField{
		{"Organisation", row.OrganisationID},
		{"Instrument", row.InstrumentCURIE},
		{"Facility", row.Facility},
		{"Digestion Enzyme", row.DigestionEnzyme},
		{"Digestion Method", row.DigestionMethod},
		{"Injection Volume", row.InjectionVolume},
		{"LC Column", row.LCColumn},
		{"LCMS Method", row.LCMSMethod},
	}
}

// missingMandatory lists a failure per blank mandatory value
func missingMandatory(fields []mandatoryField) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name+": missing mandatory metadata")
		}
	}
	return missing
}

// ValidateNGS validates a genomics metadata row
func (v *Validator) ValidateNGS(ctx context.Context, projectID uuid.UUID, row measurement.NGSMetadata) (sample.ValidationResult, error) {
	return v.validate(ctx, projectID, row.SampleCodes(), row.OrganisationID, row.InstrumentCURIE, ngsMandatory(row))
}

// ValidatePxP validates a proteomics metadata row
func (v *Validator) ValidatePxP(ctx context.Context, projectID uuid.UUID, row measurement.PxPMetadata) (sample.ValidationResult, error) {
	return v.validate(ctx, projectID, row.SampleCodes(), row.OrganisationID, row.InstrumentCURIE, pxpMandatory(row))
}

func (v *Validator) validate(ctx context.Context, projectID uuid.UUID, sampleCodes []string, organisation, instrument string, mandatory []mandatoryField) (sample.ValidationResult, error) {
	codes := nonBlank(sampleCodes)
	if len(codes) == 0 {
		return sample.Failure(missingSampleMessage), nil
	}
	if missing := missingMandatory(mandatory); len(missing) > 0 {
		return sample.Failure(missing...), nil
	}

	var failures []string
	known, err := v.knownSampleCodes(ctx, projectID, codes)
	if err != nil {
		return sample.ValidationResult{}, err
	}
	for _, c := range codes {
		if !known[strings.ToUpper(c)] {
			failures = append(failures, fmt.Sprintf(unknownSampleMessage, c))
		}
	}
	if !measurement.IsRORIRI(organisation) {
		failures = append(failures, fmt.Sprintf(unknownOrganisationMessage, organisation))
	}
	term, err := v.terms.FindByCURIE(ctx, instrumentCURIE(instrument))
	if err != nil {
		return sample.ValidationResult{}, err
	}
	if term == nil {
		failures = append(failures, fmt.Sprintf(unknownInstrumentMessage, instrument))
	}
	if len(failures) > 0 {
		return sample.Failure(failures...), nil
	}
	return sample.Success(), nil
}

// knownSampleCodes returns the upper-cased codes of samples of the project
func (v *Validator) knownSampleCodes(ctx context.Context, projectID uuid.UUID, codes []string) (map[string]bool, error) {
	parsed := make([]sample.Code, 0, len(codes))
	for _, c := range codes {
		code, err := sample.ParseCode(c)
		if err != nil {
			continue
		}
		parsed = append(parsed, code)
	}
	known := make(map[string]bool, len(parsed))
	if len(parsed) == 0 {
		return known, nil
	}
	found, err := v.samples.FindByCodes(ctx, parsed)
	if err != nil {
		return nil, err
	}
	for _, s := range found {
		if s.ProjectID == projectID {
			known[s.Code.String()] = true
		}
	}
	return known, nil
}

// instrumentCURIE accepts a bare CURIE or the "label [CURIE]" form
func instrumentCURIE(value string) string {
	if curie, ok := ontology.ExtractCURIE(value); ok {
		return curie
	}
	return strings.TrimSpace(value)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
