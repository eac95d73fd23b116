package experiment

import (
	"fmt"
	"slices"
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// Value is a single level value of an experimental variable, optionally with a unit
type Value struct {
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// String renders the value followed by its unit
func (v Value) String() string {
	if v.Unit == "" {
		return v.Value
	}
	return v.Value + " " + v.Unit
}

// Variable is an experimental variable with its possible levels
type Variable struct {
	Name   string  `json:"name"`
	Levels []Value `json:"levels"`
}

// NewVariable creates a variable; all levels use the same unit
func NewVariable(name, unit string, values []string) (Variable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Variable{}, shared.NewDomainError("INVALID_VARIABLE", "Variable name must not be empty")
	}
	levels, err := buildLevels(unit, values)
	if err != nil {
		return Variable{}, err
	}
	return Variable{Name: name, Levels: levels}, nil
}

func buildLevels(unit string, values []string) ([]Value, error) {
	if len(values) == 0 {
		return nil, shared.NewDomainError("INVALID_VARIABLE", "At least one variable level is required")
	}
	unit = strings.TrimSpace(unit)
	levels := make([]Value, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, shared.NewDomainError("INVALID_VARIABLE", "Variable level must not be empty")
		}
		level := Value{Value: v, Unit: unit}
		if slices.Contains(levels, level) {
			return nil, ErrDuplicateLevels
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// Unit returns the unit shared by all levels
func (v Variable) Unit() string {
	if len(v.Levels) == 0 {
		return ""
	}
	return v.Levels[0].Unit
}

// HasLevel reports whether value is one of the variable's levels
func (v Variable) HasLevel(value Value) bool {
	return slices.Contains(v.Levels, value)
}

// sameLevels compares the levels ignoring their order. Levels of a
// variable are unique.
func (v Variable) sameLevels(other []Value) bool {
	if len(v.Levels) != len(other) {
		return false
	}
	for _, level := range other {
		if !v.HasLevel(level) {
			return false
		}
	}
	return true
}

// Level is a value assigned to a named variable
type Level struct {
	VariableName string `json:"variable_name"`
	Value        Value  `json:"value"`
}

// String renders the level as "name: value unit"
func (l Level) String() string {
	return fmt.Sprintf("%s: %s", l.VariableName, l.Value)
}

// Condition is a non-empty set of levels from distinct variables
type Condition struct {
	Levels []Level `json:"levels"`
}

// NewCondition creates a condition; every variable may appear only once
func NewCondition(levels []Level) (Condition, error) {
	if len(levels) == 0 {
		return Condition{}, ErrEmptyVariable
	}
	seen := make(map[string]struct{}, len(levels))
	for _, l := range levels {
		if _, ok := seen[l.VariableName]; ok {
			return Condition{}, shared.NewDomainError("INVALID_CONDITION",
				"Variable "+l.VariableName+" is used more than once in the condition")
		}
		seen[l.VariableName] = struct{}{}
	}
	return Condition{Levels: slices.Clone(levels)}, nil
}

// Equal compares two conditions ignoring level order
func (c Condition) Equal(other Condition) bool {
	if len(c.Levels) != len(other.Levels) {
		return false
	}
	for _, l := range c.Levels {
		if !slices.Contains(other.Levels, l) {
			return false
		}
	}
	return true
}

// Contains reports whether the condition uses the level
func (c Condition) Contains(level Level) bool {
	return slices.Contains(c.Levels, level)
}

// String renders the condition as "var: value unit; var2: value"
func (c Condition) String() string {
	parts := make([]string, len(c.Levels))
	for i, l := range c.Levels {
		parts[i] = l.String()
	}
	return strings.Join(parts, "; ")
}

func (c *Condition) renameVariable(oldName, newName string) {
	for i := range c.Levels {
		if c.Levels[i].VariableName == oldName {
			c.Levels[i].VariableName = newName
		}
	}
}
