package experiment

import (
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// ConfoundingVariable is a variable that is recorded per sample but is not
// part of the experimental design
type ConfoundingVariable struct {
	ID           uuid.UUID `json:"id"`
	ExperimentID uuid.UUID `json:"experiment_id"`
	Name         string    `json:"name"`
}

// NewConfoundingVariable creates a confounding variable for an experiment
func NewConfoundingVariable(experimentID uuid.UUID, name string) (*ConfoundingVariable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CONFOUNDING_VARIABLE", "Confounding variable name must not be empty")
	}
	return &ConfoundingVariable{ID: uuid.New(), ExperimentID: experimentID, Name: name}, nil
}

// Rename changes the variable name
func (v *ConfoundingVariable) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CONFOUNDING_VARIABLE", "Confounding variable name must not be empty")
	}
	v.Name = name
	return nil
}

// ConfoundingLevel is the value of a confounding variable for one sample
type ConfoundingLevel struct {
	VariableID uuid.UUID `json:"variable_id"`
	SampleID   uuid.UUID `json:"sample_id"`
	Value      string    `json:"value"`
}
