package experiment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	human = ontology.Term{Label: "Homo sapiens", Name: "NCBITaxon:9606", ClassIRI: "http://purl.obolibrary.org/obo/NCBITaxon_9606"}
	mouse = ontology.Term{Label: "Mus musculus", Name: "NCBITaxon:10090", ClassIRI: "http://purl.obolibrary.org/obo/NCBITaxon_10090"}
)

func newTestExperiment(t *testing.T) *Experiment {
	t.Helper()
	e, err := NewExperiment(uuid.New(), "Mouse study", []ontology.Term{mouse}, nil, nil)
	require.NoError(t, err)
	e.ClearDomainEvents()
	return e
}

func genotypeLevel(value string) Level {
	return Level{VariableName: "genotype", Value: Value{Value: value}}
}

func TestNewExperiment(t *testing.T) {
	t.Run("blank name falls back to default", func(t *testing.T) {
		e, err := NewExperiment(uuid.New(), "  ", nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultName, e.Name)

		events := e.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeExperimentCreated, events[0].EventType())
	})

	t.Run("species are deduplicated by class IRI", func(t *testing.T) {
		e, err := NewExperiment(uuid.New(), "Study", []ontology.Term{human, human, mouse}, nil, nil)
		require.NoError(t, err)
		assert.Len(t, e.Species, 2)
	})

	t.Run("fails without project", func(t *testing.T) {
		_, err := NewExperiment(uuid.Nil, "Study", nil, nil, nil)
		require.Error(t, err)
	})
}

func TestExperiment_SetTerms(t *testing.T) {
	e := newTestExperiment(t)

	assert.ErrorIs(t, e.SetSpecies(nil), ErrNoSpeciesDefined)
	assert.ErrorIs(t, e.SetSpecimens(nil), ErrNoSpecimenDefined)
	assert.ErrorIs(t, e.SetAnalytes([]ontology.Term{}), ErrNoAnalyteDefined)

	require.NoError(t, e.SetSpecies([]ontology.Term{human}))
	assert.Equal(t, []ontology.Term{human}, e.Species)
	assert.Len(t, e.GetDomainEvents(), 1)
}

func TestExperiment_Variables(t *testing.T) {
	t.Run("identical variable is a no-op", func(t *testing.T) {
		e := newTestExperiment(t)
		require.NoError(t, e.AddVariable("genotype", "", []string{"wt", "ko"}))
		require.NoError(t, e.AddVariable("genotype", "", []string{"wt", "ko"}))
		assert.Len(t, e.Design.Variables, 1)
		assert.Len(t, e.GetDomainEvents(), 1)
	})

	t.Run("identical levels in another order is a no-op", func(t *testing.T) {
		e := newTestExperiment(t)
		require.NoError(t, e.AddVariable("genotype", "", []string{"wt", "ko"}))
		require.NoError(t, e.AddVariable("genotype", "", []string{"ko", "wt"}))
		assert.Len(t, e.Design.Variables, 1)
		assert.Len(t, e.GetDomainEvents(), 1)
	})

	t.Run("same name different unit fails", func(t *testing.T) {
		e := newTestExperiment(t)
		require.NoError(t, e.AddVariable("dose", "mg", []string{"10", "20"}))
		err := e.AddVariable("dose", "g", []string{"20", "10"})
		assert.ErrorIs(t, err, ErrVariableExists)
	})

	t.Run("same name different levels fails", func(t *testing.T) {
		e := newTestExperiment(t)
		require.NoError(t, e.AddVariable("genotype", "", []string{"wt", "ko"}))
		err := e.AddVariable("genotype", "", []string{"wt"})
		assert.ErrorIs(t, err, ErrVariableExists)
	})

	t.Run("duplicate levels fail", func(t *testing.T) {
		e := newTestExperiment(t)
		err := e.AddVariable("genotype", "", []string{"wt", "wt"})
		assert.ErrorIs(t, err, ErrDuplicateLevels)
	})

	t.Run("levels share the unit", func(t *testing.T) {
		e := newTestExperiment(t)
		require.NoError(t, e.AddVariable("dose", "mg", []string{"10", "20"}))
		v, ok := e.Design.Variable("dose")
		require.True(t, ok)
		assert.Equal(t, "mg", v.Unit())
		assert.Equal(t, "10 mg", v.Levels[0].String())
	})

	t.Run("groups block adding and removing variables", func(t *testing.T) {
		e := newTestExperiment(t)
		require.NoError(t, e.AddVariable("genotype", "", []string{"wt", "ko"}))
		_, err := e.AddGroup("wildtype", 3, []Level{genotypeLevel("wt")})
		require.NoError(t, err)

		assert.ErrorIs(t, e.AddVariable("dose", "mg", []string{"10"}), ErrGroupsDefined)
		assert.ErrorIs(t, e.RemoveVariable("genotype"), ErrGroupPreventsVariableDeletion)
		assert.ErrorIs(t, e.RemoveAllVariables(), ErrGroupsDefined)
	})

	t.Run("removing an unknown variable is a no-op", func(t *testing.T) {
		e := newTestExperiment(t)
		require.NoError(t, e.RemoveVariable("unknown"))
		assert.Empty(t, e.GetDomainEvents())
	})
}

func TestExperiment_RenameVariable(t *testing.T) {
	e := newTestExperiment(t)
	require.NoError(t, e.AddVariable("genotype", "", []string{"wt", "ko"}))
	require.NoError(t, e.AddVariable("sex", "", []string{"m", "f"}))
	group, err := e.AddGroup("wt", 2, []Level{genotypeLevel("wt")})
	require.NoError(t, err)

	assert.ErrorIs(t, e.RenameVariable("unknown", "x"), ErrUnknownVariable)
	assert.ErrorIs(t, e.RenameVariable("genotype", "sex"), ErrVariableExists)

	events := len(e.GetDomainEvents())
	require.NoError(t, e.RenameVariable("genotype", "genotype"))
	require.NoError(t, e.RenameVariable("genotype", " genotype "))
	assert.Len(t, e.GetDomainEvents(), events)

	require.NoError(t, e.RenameVariable("genotype", "strain"))
	assert.Len(t, e.GetDomainEvents(), events+1)
	_, ok := e.Design.Variable("strain")
	assert.True(t, ok)
	renamed, ok := e.Design.Group(group.ID)
	require.True(t, ok)
	assert.Equal(t, "strain", renamed.Condition.Levels[0].VariableName)
}

func TestExperiment_SetVariableLevels(t *testing.T) {
	e := newTestExperiment(t)
	require.NoError(t, e.AddVariable("genotype", "", []string{"wt", "ko", "het"}))
	_, err := e.AddGroup("wt", 2, []Level{genotypeLevel("wt")})
	require.NoError(t, err)

	assert.ErrorIs(t, e.SetVariableLevels("genotype", "", []string{"ko", "ko"}), ErrDuplicateLevels)
	assert.ErrorIs(t, e.SetVariableLevels("genotype", "", []string{"ko"}), ErrLevelInUse)
	assert.ErrorIs(t, e.SetVariableLevels("unknown", "", []string{"a"}), ErrUnknownVariable)

	require.NoError(t, e.SetVariableLevels("genotype", "", []string{"wt", "ko"}))
	v, _ := e.Design.Variable("genotype")
	assert.Len(t, v.Levels, 2)
}

func TestExperiment_Groups(t *testing.T) {
	e := newTestExperiment(t)
	require.NoError(t, e.AddVariable("genotype", "", []string{"wt", "ko"}))
	require.NoError(t, e.AddVariable("dose", "mg", []string{"10", "20"}))
	dose10 := Level{VariableName: "dose", Value: Value{Value: "10", Unit: "mg"}}

	first, err := e.AddGroup("a", 3, []Level{genotypeLevel("wt"), dose10})
	require.NoError(t, err)
	assert.Equal(t, 1, first.GroupNumber)

	t.Run("equal condition in other order fails", func(t *testing.T) {
		_, err := e.AddGroup("b", 3, []Level{dose10, genotypeLevel("wt")})
		assert.ErrorIs(t, err, ErrConditionExists)
	})

	t.Run("empty levels fail", func(t *testing.T) {
		_, err := e.AddGroup("b", 3, nil)
		assert.ErrorIs(t, err, ErrEmptyVariable)
	})

	t.Run("unknown level fails", func(t *testing.T) {
		_, err := e.AddGroup("b", 3, []Level{genotypeLevel("het")})
		assert.ErrorIs(t, err, ErrUnknownVariable)
	})

	t.Run("unknown variable fails", func(t *testing.T) {
		_, err := e.AddGroup("b", 3, []Level{{VariableName: "sex", Value: Value{Value: "m"}}})
		assert.ErrorIs(t, err, ErrUnknownVariable)
	})

	t.Run("sample size must be positive", func(t *testing.T) {
		_, err := e.AddGroup("b", 0, []Level{genotypeLevel("ko")})
		require.Error(t, err)
		assert.Equal(t, "INVALID_SAMPLE_SIZE", shared.ErrorCode(err))
	})

	second, err := e.AddGroup("b", 2, []Level{genotypeLevel("ko")})
	require.NoError(t, err)
	assert.Equal(t, 2, second.GroupNumber)

	t.Run("update keeps own condition", func(t *testing.T) {
		updated, err := e.UpdateGroup(second.ID, "b2", 5, []Level{genotypeLevel("ko")})
		require.NoError(t, err)
		assert.Equal(t, "b2", updated.Name)
		assert.Equal(t, 5, updated.SampleSize)
	})

	t.Run("update unknown group fails", func(t *testing.T) {
		_, err := e.UpdateGroup(uuid.New(), "x", 1, []Level{genotypeLevel("ko")})
		assert.ErrorIs(t, err, ErrUnknownGroup)
	})

	t.Run("group found by rendered condition", func(t *testing.T) {
		g, ok := e.Design.GroupByConditionString(" dose: 10 mg ;genotype: wt")
		require.True(t, ok)
		assert.Equal(t, first.ID, g.ID)
		_, ok = e.Design.GroupByConditionString("genotype: het")
		assert.False(t, ok)
	})

	e.RemoveGroupsByNumber(1)
	assert.Len(t, e.Design.Groups, 1)
	third, err := e.AddGroup("c", 1, []Level{genotypeLevel("wt")})
	require.NoError(t, err)
	assert.Equal(t, 3, third.GroupNumber)

	e.RemoveGroup(second.ID)
	e.RemoveGroup(third.ID)
	assert.Empty(t, e.Design.Groups)
	require.NoError(t, e.RemoveAllVariables())
	assert.Empty(t, e.Design.Variables)
}

func TestCondition_Equal(t *testing.T) {
	a, err := NewCondition([]Level{genotypeLevel("wt"), {VariableName: "sex", Value: Value{Value: "m"}}})
	require.NoError(t, err)
	b, err := NewCondition([]Level{{VariableName: "sex", Value: Value{Value: "m"}}, genotypeLevel("wt")})
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, "genotype: wt; sex: m", a.String())

	_, err = NewCondition([]Level{genotypeLevel("wt"), genotypeLevel("ko")})
	require.Error(t, err)
}

func TestConfoundingVariable(t *testing.T) {
	v, err := NewConfoundingVariable(uuid.New(), " batch effect ")
	require.NoError(t, err)
	assert.Equal(t, "batch effect", v.Name)
	require.Error(t, v.Rename(""))
	require.NoError(t, v.Rename("site"))
	assert.Equal(t, "site", v.Name)

	_, err = NewConfoundingVariable(uuid.New(), "")
	require.Error(t, err)
}
