package measurement

import (
	"context"
	"testing"

	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_MandatoryFieldsFailEarly(t *testing.T) {
	f := newFixture(t)
	row := f.pxpRow("", "Q2TEST999XX")
	row.DigestionEnzyme = ""
	row.LCColumn = " "

	result, err := f.svc.validator.ValidatePxP(context.Background(), f.projectID, row)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Digestion Enzyme: missing mandatory metadata",
		"LC Column: missing mandatory metadata",
	}, result.Failures)
}

func TestValidator_MissingSampleReference(t *testing.T) {
	f := newFixture(t)
	row := f.ngsRow("")
	row.Facility = ""

	result, err := f.svc.validator.ValidateNGS(context.Background(), f.projectID, row)
	require.NoError(t, err)
	assert.Equal(t, []string{missingSampleMessage}, result.Failures)
}

func TestValidator_SampleOfOtherProjectIsUnknown(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.validator.ValidateNGS(context.Background(), f.projectID, f.ngsRow("", f.codes[0], f.codes[4]))
	require.NoError(t, err)
	assert.Equal(t, []string{`Unknown sample with sample id "` + f.codes[4] + `"`}, result.Failures)
}

func TestService_ValidateCombinesRows(t *testing.T) {
	f := newFixture(t)
	bad := f.ngsRow("", f.codes[1])
	bad.SequencingReadType = ""

	result, err := f.svc.ValidateNGS(context.Background(), f.projectID, []measurement.NGSMetadata{f.ngsRow("", f.codes[0]), bad})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ValidatedCount)
	assert.Equal(t, []string{"Sequencing Read Type: missing mandatory metadata"}, result.Failures)

	resp := ToValidationResponse(result)
	assert.False(t, resp.Valid)
	assert.Equal(t, 2, resp.Rows)
}
