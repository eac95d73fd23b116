package measurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	tests := []struct {
		input string
		ngs   bool
		ms    bool
		err   bool
	}{
		{input: "NGSQ2AB12001AX", ngs: true},
		{input: "msq2ab12001ax", ms: true},
		{input: "XYQ2AB12001AX", err: true},
		{input: "NGS", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, err := ParseCode(tt.input)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidMeasurementCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ngs, code.IsNGS())
			assert.Equal(t, tt.ms, code.IsMS())
			assert.Equal(t, "Q2AB12001AX", code.SampleCode())
		})
	}

	assert.Equal(t, "NGSQ2AB12001AX", NewNGSCode("q2ab12001ax").String())
	assert.Equal(t, "MSQ2AB12001AX", NewMSCode("Q2AB12001AX").String())
}

func TestROR(t *testing.T) {
	assert.True(t, IsRORIRI("https://ror.org/03a1kwz48"))
	assert.False(t, IsRORIRI("https://example.org/03a1kwz48"))
	assert.False(t, IsRORIRI("03a1kwz48"))

	id, ok := ExtractRORID("https://ror.org/03a1kwz48")
	require.True(t, ok)
	assert.Equal(t, "03a1kwz48", id)

	_, ok = ExtractRORID("University of Tübingen")
	assert.False(t, ok)
}

func TestNewNGSMeasurement(t *testing.T) {
	instrument := ontology.Term{Label: "Illumina NovaSeq 6000", Name: "EFO:0008637"}
	sampleIDs := []uuid.UUID{uuid.New(), uuid.New()}

	m, err := NewNGSMeasurement(NewNGSCode("Q2AB12001AX"), uuid.New(), sampleIDs, Organisation{IRI: "https://ror.org/03a1kwz48"},
		NGSMethod{Instrument: instrument, Facility: " imgag ", SequencingReadType: "paired-end"}, nil)
	require.NoError(t, err)
	assert.True(t, m.IsPooled())
	assert.Equal(t, "imgag", m.Facility)
	require.Len(t, m.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeMeasurementRegistered, m.GetDomainEvents()[0].EventType())

	m.Update(m.Organisation, NGSMethod{Instrument: instrument, Facility: "imgag", SequencingReadType: "single-end"}, nil)
	assert.Equal(t, "single-end", m.SequencingReadType)
	assert.Equal(t, 2, m.GetVersion())

	_, err = NewNGSMeasurement(NewNGSCode("Q2AB12001AX"), uuid.New(), nil, Organisation{}, NGSMethod{}, nil)
	assert.ErrorIs(t, err, ErrMissingSample)

	_, err = NewNGSMeasurement(NewMSCode("Q2AB12001AX"), uuid.New(), sampleIDs, Organisation{}, NGSMethod{}, nil)
	assert.ErrorIs(t, err, ErrInvalidMeasurementCode)
}

func TestNewProteomicsMeasurement(t *testing.T) {
	m, err := NewProteomicsMeasurement(NewMSCode("Q2AB12001AX"), uuid.New(), []uuid.UUID{uuid.New()}, Organisation{},
		PxPMethod{DigestionEnzyme: "trypsin", InjectionVolume: 2.5}, nil)
	require.NoError(t, err)
	assert.False(t, m.IsPooled())
	assert.Equal(t, 2.5, m.InjectionVolume)

	require.Error(t, m.Update(Organisation{}, PxPMethod{InjectionVolume: -1}, nil))
	require.NoError(t, m.Update(Organisation{}, PxPMethod{DigestionEnzyme: "LysC"}, nil))
	assert.Equal(t, "LysC", m.DigestionEnzyme)
}

func pxpRow(code, pool, enzyme string) PxPMetadata {
	return PxPMetadata{
		Samples:         []PxPSampleEntry{{SampleCode: code}},
		OrganisationID:  "https://ror.org/03a1kwz48",
		InstrumentCURIE: "MS:1002523",
		DigestionEnzyme: enzyme,
		SamplePoolGroup: pool,
	}
}

func TestMergeByPool(t *testing.T) {
	t.Run("rows of one pool merge", func(t *testing.T) {
		rows := []PxPMetadata{
			pxpRow("Q2AB12001AX", "pool1", "trypsin"),
			pxpRow("Q2AB12002AX", "", "trypsin"),
			pxpRow("Q2AB12003AX", " pool1 ", "trypsin"),
		}
		merged, err := MergeByPool(rows)
		require.NoError(t, err)
		require.Len(t, merged, 2)
		assert.Equal(t, []string{"Q2AB12001AX", "Q2AB12003AX"}, merged[0].SampleCodes())
		assert.Equal(t, []string{"Q2AB12002AX"}, merged[1].SampleCodes())
		assert.Len(t, rows[0].Samples, 1)
	})

	t.Run("different shared field fails", func(t *testing.T) {
		rows := []PxPMetadata{
			pxpRow("Q2AB12001AX", "pool1", "trypsin"),
			pxpRow("Q2AB12003AX", "pool1", "LysC"),
		}
		_, err := MergeByPool(rows)
		require.Error(t, err)
		assert.Equal(t, "Could not merge. Different digestion enzyme.", err.Error())
	})

	t.Run("ngs rows merge", func(t *testing.T) {
		rows := []NGSMetadata{
			{Samples: []NGSSampleEntry{{SampleCode: "A", IndexI7: "i7a"}}, SamplePoolGroup: "p", Facility: "f"},
			{Samples: []NGSSampleEntry{{SampleCode: "B", IndexI7: "i7b"}}, SamplePoolGroup: "p", Facility: "f"},
		}
		merged, err := MergeByPool(rows)
		require.NoError(t, err)
		require.Len(t, merged, 1)
		assert.Equal(t, []string{"A", "B"}, merged[0].SampleCodes())

		rows[1].Facility = "g"
		_, err = MergeByPool(rows)
		assert.EqualError(t, err, "Could not merge. Different facility.")
	})
}
