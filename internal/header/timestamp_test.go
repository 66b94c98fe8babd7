package header

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synospot/synospot/internal/recognize"
	"github.com/synospot/synospot/internal/testutil"
	"github.com/synospot/synospot/internal/utils"
)

func headerToken(text string, conf float64) recognize.Token {
	return recognize.Token{
		Quad:       utils.NewQuadFromRect(image.Rect(10, 10, 300, 30)),
		Text:       text,
		Confidence: conf,
	}
}

func TestExtract_FullPattern(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		"": {headerToken("Valid 0600 UTC Tue 02 JAN", 0.9)},
	}}

	ex := NewExtractor(fake, DefaultConfig())
	ct, err := ex.Extract(context.Background(), testutil.NewChart(testutil.StandardSize))
	require.NoError(t, err)
	require.NotNil(t, ct)
	assert.Equal(t, "0600", ct.Hour)
	assert.Equal(t, "Tue", ct.Weekday)
	assert.Equal(t, "02", ct.Day)
	assert.Equal(t, "JAN", ct.Month)
	assert.Equal(t, "0600 UTC Tue 02 JAN", ct.String())
	assert.Equal(t, "0600_UTC_Tue_02_JAN", ct.Slug())
	assert.Equal(t, "01", ct.MonthNumber())
}

func TestExtract_GeneralFallbackDefaultsHour(t *testing.T) {
	// No "Valid" keyword and no time: the general pattern still yields a
	// date, with the hour defaulted.
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		"": {headerToken("UTC Wed 15 MAR", 0.5)},
	}}

	ex := NewExtractor(fake, DefaultConfig())
	ct, err := ex.Extract(context.Background(), testutil.NewChart(testutil.StandardSize))
	require.NoError(t, err)
	require.NotNil(t, ct)
	assert.Equal(t, "0000", ct.Hour)
	assert.Equal(t, "Wed", ct.Weekday)
	assert.Equal(t, "15", ct.Day)
	assert.Equal(t, "MAR", ct.Month)
}

func TestExtract_PrefersFullPatternOverGeneral(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		"": {
			headerToken("UTC Mon 01 FEB", 0.9),
			headerToken("Valid 1200 UTC Tue 02 MAR", 0.4),
		},
	}}

	ex := NewExtractor(fake, DefaultConfig())
	ct, err := ex.Extract(context.Background(), testutil.NewChart(testutil.StandardSize))
	require.NoError(t, err)
	require.NotNil(t, ct)
	assert.Equal(t, "1200", ct.Hour)
	assert.Equal(t, "MAR", ct.Month)
}

func TestExtract_IllegibleHeaderYieldsNil(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		"": {headerToken("squiggles", 0.9)},
	}}

	ex := NewExtractor(fake, DefaultConfig())
	ct, err := ex.Extract(context.Background(), testutil.NewChart(testutil.StandardSize))
	require.NoError(t, err)
	assert.Nil(t, ct)
}

func TestExtract_RecognitionFailureYieldsNil(t *testing.T) {
	fake := &testutil.FakeRecognizer{Err: errors.New("engine unavailable")}

	ex := NewExtractor(fake, DefaultConfig())
	ct, err := ex.Extract(context.Background(), testutil.NewChart(testutil.StandardSize))
	require.NoError(t, err)
	assert.Nil(t, ct)
}

func TestParseFilename(t *testing.T) {
	ct, err := ParseFilename("0600_UTC_Tue_02_JAN_mask.jpg")
	require.NoError(t, err)
	assert.Equal(t, "0600", ct.Hour)
	assert.Equal(t, "Tue", ct.Weekday)
	assert.Equal(t, "02", ct.Day)
	assert.Equal(t, "JAN", ct.Month)
	assert.Equal(t, "01", ct.MonthNumber())
}

func TestParseFilename_UnknownMonthMapsToZero(t *testing.T) {
	ct, err := ParseFilename("0600_UTC_Tue_02_XXX_mask.jpg")
	require.NoError(t, err)
	assert.Equal(t, "00", ct.MonthNumber())
}

func TestParseFilename_Malformed(t *testing.T) {
	_, err := ParseFilename("chart.jpg")
	assert.Error(t, err)
}
