package experiment

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// Design rule violations
var (
	ErrGroupsDefined                 = shared.NewDomainError("GROUPS_DEFINED", "There are already experimental groups defined")
	ErrVariableExists                = shared.NewDomainError("VARIABLE_EXISTS", "A variable with this name already exists")
	ErrGroupPreventsVariableDeletion = shared.NewDomainError("GROUP_PREVENTS_VARIABLE_DELETION", "Experimental groups prevent deletion of experimental variables")
	ErrUnknownVariable               = shared.NewDomainError("UNKNOWN_VARIABLE", "Unknown experimental variable")
	ErrDuplicateLevels               = shared.NewDomainError("DUPLICATE_LEVELS", "Duplicate levels detected")
	ErrLevelInUse                    = shared.NewDomainError("LEVEL_IN_USE", "Variable level is in use by an experimental group")
	ErrEmptyVariable                 = shared.NewDomainError("EMPTY_VARIABLE", "A condition needs at least one variable level")
	ErrConditionExists               = shared.NewDomainError("CONDITION_EXISTS", "An experimental group with this condition already exists")
	ErrUnknownGroup                  = shared.NewDomainError("UNKNOWN_GROUP", "Unknown experimental group")
)

// Group is an experimental group sharing one condition
type Group struct {
	ID          uuid.UUID `json:"id"`
	GroupNumber int       `json:"group_number"`
	Name        string    `json:"name"`
	Condition   Condition `json:"condition"`
	SampleSize  int       `json:"sample_size"`
}

// Design holds the experimental variables and groups of an experiment
type Design struct {
	Variables []Variable `json:"variables"`
	Groups    []Group    `json:"groups"`
}

// Variable returns the variable with the given name
func (d *Design) Variable(name string) (Variable, bool) {
	i := d.variableIndex(name)
	if i < 0 {
		return Variable{}, false
	}
	return d.Variables[i], true
}

func (d *Design) variableIndex(name string) int {
	name = strings.TrimSpace(name)
	return slices.IndexFunc(d.Variables, func(v Variable) bool { return v.Name == name })
}

// Group returns the group with the given id
func (d *Design) Group(id uuid.UUID) (Group, bool) {
	i := slices.IndexFunc(d.Groups, func(g Group) bool { return g.ID == id })
	if i < 0 {
		return Group{}, false
	}
	return d.Groups[i], true
}

// AddVariable adds a variable; it returns false when an identical variable exists
func (d *Design) AddVariable(variable Variable) (bool, error) {
	if len(d.Groups) > 0 {
		return false, ErrGroupsDefined
	}
	if existing, ok := d.Variable(variable.Name); ok {
		if existing.sameLevels(variable.Levels) {
			return false, nil
		}
		return false, ErrVariableExists.Withf("A variable with name %s already exists", variable.Name)
	}
	d.Variables = append(d.Variables, variable)
	return true, nil
}

// RemoveVariable removes a variable; it returns false when it is unknown
func (d *Design) RemoveVariable(name string) (bool, error) {
	i := d.variableIndex(name)
	if i < 0 {
		return false, nil
	}
	if len(d.Groups) > 0 {
		return false, shared.NewDomainError(ErrGroupPreventsVariableDeletion.Code,
			"There are experimental groups in the experimental design. Cannot remove experimental variable "+name)
	}
	d.Variables = slices.Delete(d.Variables, i, i+1)
	return true, nil
}

// RemoveAllVariables clears the variables while no group references them
func (d *Design) RemoveAllVariables() error {
	if len(d.Groups) > 0 {
		return ErrGroupsDefined.Withf("Cannot delete experimental variables referenced by an experimental group")
	}
	d.Variables = nil
	return nil
}

// RenameVariable renames a variable including its use in group conditions.
// It returns false when the name does not change.
func (d *Design) RenameVariable(oldName, newName string) (bool, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return false, shared.NewDomainError("INVALID_VARIABLE", "Variable name must not be empty")
	}
	i := d.variableIndex(oldName)
	if i < 0 {
		return false, ErrUnknownVariable.Withf("No variable with name %s exists", oldName)
	}
	if d.Variables[i].Name == newName {
		return false, nil
	}
	if d.variableIndex(newName) >= 0 {
		return false, ErrVariableExists.Withf("Variable with the name %s already exists", newName)
	}
	for g := range d.Groups {
		d.Groups[g].Condition.renameVariable(d.Variables[i].Name, newName)
	}
	d.Variables[i].Name = newName
	return true, nil
}

// SetVariableLevels replaces the levels and unit of a variable. Levels in use
// by a group cannot be removed.
func (d *Design) SetVariableLevels(name, unit string, values []string) error {
	i := d.variableIndex(name)
	if i < 0 {
		return ErrUnknownVariable.Withf("No variable with name %s exists", name)
	}
	levels, err := buildLevels(unit, values)
	if err != nil {
		return err
	}
	variable := d.Variables[i]
	for _, old := range variable.Levels {
		if slices.Contains(levels, old) {
			continue
		}
		if d.isLevelUsed(Level{VariableName: variable.Name, Value: old}) {
			return shared.NewDomainError(ErrLevelInUse.Code,
				"Variable level "+old.String()+" is already in use and cannot be deleted")
		}
	}
	d.Variables[i].Levels = levels
	return nil
}

func (d *Design) isLevelUsed(level Level) bool {
	return slices.ContainsFunc(d.Groups, func(g Group) bool { return g.Condition.Contains(level) })
}

// AddGroup adds an experimental group with the next free group number
func (d *Design) AddGroup(name string, sampleSize int, levels []Level) (Group, error) {
	condition, err := d.condition(levels)
	if err != nil {
		return Group{}, err
	}
	if sampleSize < 1 {
		return Group{}, shared.NewDomainError("INVALID_SAMPLE_SIZE", "Sample size must be at least 1")
	}
	if d.isConditionDefined(condition, uuid.Nil) {
		return Group{}, ErrConditionExists
	}
	group := Group{
		ID:          uuid.New(),
		GroupNumber: d.nextGroupNumber(),
		Name:        strings.TrimSpace(name),
		Condition:   condition,
		SampleSize:  sampleSize,
	}
	d.Groups = append(d.Groups, group)
	return group, nil
}

// UpdateGroup replaces name, sample size and condition of a group
func (d *Design) UpdateGroup(id uuid.UUID, name string, sampleSize int, levels []Level) (Group, error) {
	i := slices.IndexFunc(d.Groups, func(g Group) bool { return g.ID == id })
	if i < 0 {
		return Group{}, ErrUnknownGroup
	}
	condition, err := d.condition(levels)
	if err != nil {
		return Group{}, err
	}
	if sampleSize < 1 {
		return Group{}, shared.NewDomainError("INVALID_SAMPLE_SIZE", "Sample size must be at least 1")
	}
	if d.isConditionDefined(condition, id) {
		return Group{}, ErrConditionExists
	}
	d.Groups[i].Name = strings.TrimSpace(name)
	d.Groups[i].SampleSize = sampleSize
	d.Groups[i].Condition = condition
	return d.Groups[i], nil
}

// RemoveGroup removes a group by id
func (d *Design) RemoveGroup(id uuid.UUID) bool {
	n := len(d.Groups)
	d.Groups = slices.DeleteFunc(d.Groups, func(g Group) bool { return g.ID == id })
	return len(d.Groups) != n
}

// RemoveGroupsByNumber removes all groups with the given group numbers
func (d *Design) RemoveGroupsByNumber(numbers ...int) int {
	n := len(d.Groups)
	d.Groups = slices.DeleteFunc(d.Groups, func(g Group) bool { return slices.Contains(numbers, g.GroupNumber) })
	return n - len(d.Groups)
}

// FindCondition returns the group defined for the condition
func (d *Design) FindCondition(condition Condition) (Group, bool) {
	i := slices.IndexFunc(d.Groups, func(g Group) bool { return g.Condition.Equal(condition) })
	if i < 0 {
		return Group{}, false
	}
	return d.Groups[i], true
}

func (d *Design) condition(levels []Level) (Condition, error) {
	if len(levels) == 0 {
		return Condition{}, ErrEmptyVariable
	}
	for _, l := range levels {
		variable, ok := d.Variable(l.VariableName)
		if !ok {
			return Condition{}, shared.NewDomainError(ErrUnknownVariable.Code,
				"There is no variable "+l.VariableName+" in this experiment")
		}
		if !variable.HasLevel(l.Value) {
			return Condition{}, shared.NewDomainError(ErrUnknownVariable.Code,
				"Variable "+l.VariableName+" has no level "+l.Value.String())
		}
	}
	return NewCondition(levels)
}

func (d *Design) isConditionDefined(condition Condition, except uuid.UUID) bool {
	return slices.ContainsFunc(d.Groups, func(g Group) bool {
		return g.ID != except && g.Condition.Equal(condition)
	})
}

func (d *Design) nextGroupNumber() int {
	highest := 0
	for _, g := range d.Groups {
		highest = max(highest, g.GroupNumber)
	}
	return highest + 1
}

// GroupByConditionString finds a group from a rendered condition such as
// "genotype: wt; dose: 10 mg". Level order and surrounding spaces are ignored.
func (d *Design) GroupByConditionString(s string) (Group, bool) {
	want := splitCondition(s)
	if len(want) == 0 {
		return Group{}, false
	}
	for _, g := range d.Groups {
		have := splitCondition(g.Condition.String())
		if len(have) != len(want) {
			continue
		}
		if !slices.ContainsFunc(want, func(part string) bool { return !slices.Contains(have, part) }) {
			return g, true
		}
	}
	return Group{}, false
}

func splitCondition(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ";") {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
