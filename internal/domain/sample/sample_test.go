package sample

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	projectCode := project.MustParseCode("Q2AB12")

	t.Run("first sample", func(t *testing.T) {
		code, err := NewCode(projectCode, 1)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(code.String(), "Q2AB12001A"))
		assert.Len(t, code.String(), 11)
	})

	t.Run("letter increments after 999", func(t *testing.T) {
		code, err := NewCode(projectCode, 999)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(code.String(), "Q2AB12999A"))

		code, err = NewCode(projectCode, 1000)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(code.String(), "Q2AB12001B"))
	})

	t.Run("generated codes parse", func(t *testing.T) {
		for n := 1; n < 2500; n += 37 {
			code, err := NewCode(projectCode, n)
			require.NoError(t, err)
			parsed, err := ParseCode(strings.ToLower(code.String()))
			require.NoError(t, err)
			assert.Equal(t, code, parsed)
		}
	})

	t.Run("rejects non positive numbers", func(t *testing.T) {
		_, err := NewCode(projectCode, 0)
		assert.ErrorIs(t, err, ErrInvalidSampleCode)
	})

	t.Run("rejects exhausted code space", func(t *testing.T) {
		_, err := NewCode(projectCode, 26*999+1)
		assert.ErrorIs(t, err, ErrInvalidSampleCode)
	})
}

func TestParseCode_Checksum(t *testing.T) {
	code, err := NewCode(project.MustParseCode("Q2AB12"), 5)
	require.NoError(t, err)
	s := code.String()
	last := s[len(s)-1]
	wrong := byte('0')
	if last == '0' {
		wrong = '1'
	}
	_, err = ParseCode(s[:len(s)-1] + string(wrong))
	assert.ErrorIs(t, err, ErrInvalidSampleCode)
}

func TestParseCode_Structure(t *testing.T) {
	valid, err := NewCode(project.MustParseCode("Q2AB12"), 42)
	require.NoError(t, err)
	require.Equal(t, "Q2AB12042A", valid.String()[:10])

	// resign computes the checksum so only the structure is at fault
	resign := func(base string) string { return base + string(checksum(base)) }

	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"too short", "Q2AB"},
		{"project code only", "Q2AB12"},
		{"wrong prefix", resign("X9AB12042A")},
		{"invalid project character", resign("Q2AB-2042A")},
		{"letters in counter", resign("Q2AB12O42A")},
		{"zero counter", resign("Q2AB12000A")},
		{"digit as block letter", resign("Q2AB120421")},
		{"too long", resign("Q2AB12042AA")},
		{"checksum only", resign("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCode(tt.code)
			assert.ErrorIs(t, err, ErrInvalidSampleCode)
		})
	}

	parsed, err := ParseCode("  " + strings.ToLower(valid.String()) + " ")
	require.NoError(t, err)
	assert.Equal(t, valid, parsed)
}

func TestParseAnalysisMethod(t *testing.T) {
	m, err := ParseAnalysisMethod("rna-seq")
	require.NoError(t, err)
	assert.Equal(t, RNASeq, m)

	m, err = ParseAnalysisMethod("Phosphoproteomics")
	require.NoError(t, err)
	assert.Equal(t, PhosphoProteomics, m)

	_, err = ParseAnalysisMethod("magic")
	require.Error(t, err)
	assert.Equal(t, "Unknown analysis: magic", err.Error())

	assert.Len(t, AnalysisMethods(), 30)
}

func TestSample_Lifecycle(t *testing.T) {
	code, err := NewCode(project.MustParseCode("Q2AB12"), 1)
	require.NoError(t, err)
	reg := Registration{Label: "mouse 1", ExperimentID: uuid.New(), AnalysisMethod: WGS}

	s, err := NewSample(code, uuid.New(), uuid.New(), reg)
	require.NoError(t, err)
	require.Len(t, s.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeSampleRegistered, s.GetDomainEvents()[0].EventType())

	_, err = NewSample(code, uuid.New(), uuid.New(), Registration{ExperimentID: uuid.New()})
	require.Error(t, err)

	reg.Label = "mouse 1b"
	require.NoError(t, s.Update(reg))
	assert.Equal(t, "mouse 1b", s.Label)
	assert.Equal(t, 2, s.GetVersion())

	s.MarkDeleted()
	assert.Equal(t, EventTypeSampleDeleted, s.GetDomainEvents()[2].EventType())
}

func TestBatch(t *testing.T) {
	b, err := NewBatch(uuid.New(), "batch 1", false)
	require.NoError(t, err)

	id := uuid.New()
	b.AddSample(id)
	b.AddSample(id)
	assert.Len(t, b.SampleIDs, 1)
	assert.True(t, b.Contains(id))

	b.RemoveSample(id)
	assert.Empty(t, b.SampleIDs)

	require.Error(t, b.Rename(" "))
	require.NoError(t, b.Rename("batch 2"))
	b.SetPilot(true)
	assert.True(t, b.Pilot)

	b.Registered("Gut microbiome")
	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	registered := events[0].(*BatchRegisteredEvent)
	assert.Equal(t, "batch 2", registered.Label)
	assert.Equal(t, "Gut microbiome", registered.ProjectTitle)

	_, err = NewBatch(uuid.New(), "", false)
	require.Error(t, err)
}

func TestNewQualityControl(t *testing.T) {
	projectID := uuid.New()
	qc, err := NewQualityControl(projectID, nil, "../reports/qc.pdf", "application/pdf", 42)
	require.NoError(t, err)
	assert.Equal(t, "qc.pdf", qc.FileName)
	assert.Equal(t, "projects/"+projectID.String()+"/qc/"+qc.ID.String()+"-qc.pdf", qc.StorageKey)

	_, err = NewQualityControl(projectID, nil, " ", "", 0)
	require.Error(t, err)
}

func TestValidationResult_Combine(t *testing.T) {
	r := Success().Combine(Failure("Unknown species: x")).Combine(Success())
	assert.Equal(t, 3, r.ValidatedCount)
	assert.True(t, r.ContainsFailures())
	assert.Equal(t, []string{"Unknown species: x"}, r.Failures)
	assert.False(t, Success().ContainsFailures())
}
