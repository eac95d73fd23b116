package sample

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// TermResolver finds ontology terms by CURIE. A nil term without error means
// the term is unknown.
type TermResolver interface {
	FindByCURIE(ctx context.Context, curie string) (*ontology.Term, error)
}

// Validation checks sample sheet rows against the experiment they belong to
// and assembles the registration data of valid rows.
type Validation struct {
	experiments experiment.ExperimentRepository
	confounding experiment.ConfoundingRepository
	samples     sample.SampleRepository
	terms       TermResolver
}

// NewValidation creates a new Validation
func NewValidation(
	experiments experiment.ExperimentRepository,
	confounding experiment.ConfoundingRepository,
	samples sample.SampleRepository,
	terms TermResolver,
) *Validation {
	return &Validation{
		experiments: experiments,
		confounding: confounding,
		samples:     samples,
		terms:       terms,
	}
}

// ValidateNew validates a row describing a sample not registered yet
func (v *Validation) ValidateNew(ctx context.Context, projectID uuid.UUID, row SampleMetadata) (sample.ValidationResult, sample.Registration, error) {
	exp, err := v.experiments.FindByID(ctx, row.ExperimentID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return sample.ValidationResult{}, sample.Registration{}, err
	}
	if exp == nil || exp.ProjectID != projectID {
		return sample.Failure("Unknown experiment."), sample.Registration{}, nil
	}

	reg := sample.Registration{
		Label:               row.Label,
		BiologicalReplicate: row.BiologicalReplicate,
		ExperimentID:        exp.ID,
		Comment:             row.Comment,
	}
	var failures []string

	if group, ok := exp.Design.GroupByConditionString(row.Condition); ok {
		reg.ExperimentalGroupID = group.ID
	} else {
		failures = append(failures, "Unknown condition: "+row.Condition)
	}

	method, err := sample.ParseAnalysisMethod(row.AnalysisMethod)
	if err != nil {
		failures = append(failures, "Unknown analysis: "+row.AnalysisMethod)
	} else {
		reg.AnalysisMethod = method
	}

	if strings.TrimSpace(row.Label) == "" {
		failures = append(failures, "Missing sample label.")
	}

	for _, field := range []struct {
		name   string
		value  string
		target *ontology.Term
	}{
		{"species", row.Species, &reg.Origin.Species},
		{"specimen", row.Specimen, &reg.Origin.Specimen},
		{"analyte", row.Analyte, &reg.Origin.Analyte},
	} {
		term, failure, err := v.term(ctx, field.name, field.value)
		if err != nil {
			return sample.ValidationResult{}, sample.Registration{}, err
		}
		if failure != "" {
			failures = append(failures, failure)
			continue
		}
		*field.target = *term
	}

	if len(row.ConfoundingLevels) > 0 {
		known, err := v.confoundingVariables(ctx, exp.ID)
		if err != nil {
			return sample.ValidationResult{}, sample.Registration{}, err
		}
		for id := range row.ConfoundingLevels {
			if !known[id] {
				failures = append(failures, "Unknown confounding variable: "+id.String())
			}
		}
	}

	if len(failures) > 0 {
		return sample.Failure(failures...), reg, nil
	}
	return sample.Success(), reg, nil
}

// ValidateExisting validates a row editing a registered sample, identified by
// its sample code
func (v *Validation) ValidateExisting(ctx context.Context, projectID uuid.UUID, row SampleMetadata) (sample.ValidationResult, sample.Registration, *sample.Sample, error) {
	if strings.TrimSpace(row.SampleCode) == "" {
		return sample.Failure("Missing sample id."), sample.Registration{}, nil, nil
	}
	existing, err := v.findByCode(ctx, projectID, row.SampleCode)
	if err != nil {
		return sample.ValidationResult{}, sample.Registration{}, nil, err
	}
	if existing == nil {
		return sample.Failure("Unknown sample id: " + row.SampleCode), sample.Registration{}, nil, nil
	}
	result, reg, err := v.ValidateNew(ctx, projectID, row)
	if err != nil {
		return sample.ValidationResult{}, sample.Registration{}, nil, err
	}
	return result, reg, existing, nil
}

// ValidateAll validates rows and combines their results. existing selects
// whether rows edit registered samples.
func (v *Validation) ValidateAll(ctx context.Context, projectID uuid.UUID, rows []SampleMetadata, existing bool) (sample.ValidationResult, error) {
	var combined sample.ValidationResult
	for i, row := range rows {
		var (
			result sample.ValidationResult
			err    error
		)
		if existing {
			result, _, _, err = v.ValidateExisting(ctx, projectID, row)
		} else {
			result, _, err = v.ValidateNew(ctx, projectID, row)
		}
		if err != nil {
			return sample.ValidationResult{}, fmt.Errorf("validate row %d: %w", i+1, err)
		}
		combined = combined.Combine(result)
	}
	return combined, nil
}

func (v *Validation) term(ctx context.Context, field, value string) (*ontology.Term, string, error) {
	curie, ok := ontology.ExtractCURIE(value)
	if !ok {
		return nil, fmt.Sprintf("Missing CURIE in %s: %s", field, value), nil
	}
	term, err := v.terms.FindByCURIE(ctx, curie)
	if err != nil {
		return nil, "", err
	}
	if term == nil {
		return nil, fmt.Sprintf("Unknown %s: %s", field, curie), nil
	}
	return term, "", nil
}

func (v *Validation) confoundingVariables(ctx context.Context, experimentID uuid.UUID) (map[uuid.UUID]bool, error) {
	variables, err := v.confounding.FindVariablesByExperiment(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(variables))
	for _, cv := range variables {
		known[cv.ID] = true
	}
	return known, nil
}

func (v *Validation) findByCode(ctx context.Context, projectID uuid.UUID, code string) (*sample.Sample, error) {
	parsed, err := sample.ParseCode(code)
	if err != nil {
		return nil, nil
	}
	found, err := v.samples.FindByCodes(ctx, []sample.Code{parsed})
	if err != nil {
		return nil, err
	}
	for i := range found {
		if found[i].ProjectID == projectID {
			return &found[i], nil
		}
	}
	return nil, nil
}
