package system

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synospot/synospot/internal/pressure"
	"github.com/synospot/synospot/internal/recognize"
	"github.com/synospot/synospot/internal/testutil"
	"github.com/synospot/synospot/internal/utils"
)

func reading(value int, x, y float64) *pressure.Reading {
	return &pressure.Reading{
		Value:      value,
		Center:     utils.Point{X: x, Y: y},
		Quad:       utils.NewQuadFromRect(image.Rect(int(x)-15, int(y)-8, int(x)+15, int(y)+8)),
		Confidence: 0.9,
	}
}

func glyphToken(text string, conf float64) recognize.Token {
	// Coordinates are window-relative: this box centers at (6,6), left of
	// and above the window midpoint.
	return recognize.Token{
		Quad:       utils.NewQuadFromRect(image.Rect(2, 2, 10, 10)),
		Text:       text,
		Confidence: conf,
	}
}

func TestClassify_RecognizedGlyph(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		GlyphAllowlist: {glyphToken("H", 0.85)},
	}}

	cl := NewClassifier(fake, DefaultConfig())
	r := reading(1024, 500, 300)
	markers, err := cl.Classify(context.Background(), testutil.NewChart(testutil.StandardSize), []*pressure.Reading{r})
	require.NoError(t, err)
	require.Len(t, markers, 1)

	m := markers[0]
	assert.Equal(t, High, m.Kind)
	assert.Equal(t, "H", m.Kind.String())
	assert.Equal(t, 1024, m.Pressure)
	assert.InDelta(t, 0.85, m.Confidence, 1e-9)
	assert.False(t, m.Heuristic)
	assert.True(t, r.Claimed)

	// Window is 20x20 centered 20px above the reading center.
	assert.InDelta(t, 490, m.Window.MinX, 0.5)
	assert.InDelta(t, 270, m.Window.MinY, 0.5)
	assert.InDelta(t, 510, m.Window.MaxX, 0.5)
	assert.InDelta(t, 290, m.Window.MaxY, 0.5)
	// The marker sits at the recognized letter's own center, mapped back
	// into image coordinates, not at the window center.
	assert.InDelta(t, 496, m.Center.X, 1e-9)
	assert.InDelta(t, 276, m.Center.Y, 1e-9)
}

func TestClassify_MarkerCenterFollowsGlyphWithinWindow(t *testing.T) {
	// Letter recognized in the bottom-right corner of the window: box
	// (12,14)-(18,20) centers at (15,17) window-relative.
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		GlyphAllowlist: {{
			Quad:       utils.NewQuadFromRect(image.Rect(12, 14, 18, 20)),
			Text:       "L",
			Confidence: 0.6,
		}},
	}}

	cl := NewClassifier(fake, DefaultConfig())
	markers, err := cl.Classify(context.Background(), testutil.NewChart(testutil.StandardSize),
		[]*pressure.Reading{reading(998, 500, 300)})
	require.NoError(t, err)
	require.Len(t, markers, 1)

	m := markers[0]
	assert.False(t, m.Heuristic)
	assert.InDelta(t, 505, m.Center.X, 1e-9)
	assert.InDelta(t, 287, m.Center.Y, 1e-9)
}

func TestClassify_PicksHighestConfidenceLetter(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		GlyphAllowlist: {
			glyphToken("H", 0.4),
			glyphToken("L", 0.7),
			glyphToken("LH", 0.9), // not a single letter, ignored
		},
	}}

	cl := NewClassifier(fake, DefaultConfig())
	markers, err := cl.Classify(context.Background(), testutil.NewChart(testutil.StandardSize),
		[]*pressure.Reading{reading(1000, 500, 300)})
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, Low, markers[0].Kind)
	assert.InDelta(t, 0.7, markers[0].Confidence, 1e-9)
}

func TestClassify_DensityFallbackLeftHeavyIsLow(t *testing.T) {
	// No usable letter: confidence below the 0.1 floor.
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		GlyphAllowlist: {glyphToken("L", 0.05)},
	}}

	// Paint a left-heavy blob inside the glyph window of a reading at
	// (500, 300): window spans x 490..510, y 270..290.
	img := testutil.NewChart(testutil.StandardSize)
	testutil.DrawBlob(img, 494, 280, 8)

	cl := NewClassifier(fake, DefaultConfig())
	markers, err := cl.Classify(context.Background(), img,
		[]*pressure.Reading{reading(1000, 500, 300)})
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, Low, markers[0].Kind)
	assert.True(t, markers[0].Heuristic)
	assert.InDelta(t, 0.5, markers[0].Confidence, 1e-9)
	// Without a recognized letter the marker stays at the window center.
	assert.InDelta(t, 500, markers[0].Center.X, 1e-9)
	assert.InDelta(t, 280, markers[0].Center.Y, 1e-9)
}

func TestClassify_DensityFallbackBalancedIsHigh(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{}}

	img := testutil.NewChart(testutil.StandardSize)
	// Symmetric blob straddling the window midline.
	testutil.DrawBlob(img, 500, 280, 12)

	cl := NewClassifier(fake, DefaultConfig())
	markers, err := cl.Classify(context.Background(), img,
		[]*pressure.Reading{reading(1000, 500, 300)})
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, High, markers[0].Kind)
	assert.True(t, markers[0].Heuristic)
}

func TestClassify_RecognitionErrorFallsBackToDensity(t *testing.T) {
	fake := &testutil.FakeRecognizer{Err: errors.New("engine unavailable")}

	img := testutil.NewChart(testutil.StandardSize)
	testutil.DrawBlob(img, 494, 280, 8)

	cl := NewClassifier(fake, DefaultConfig())
	markers, err := cl.Classify(context.Background(), img,
		[]*pressure.Reading{reading(1000, 500, 300)})
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, Low, markers[0].Kind)
	assert.True(t, markers[0].Heuristic)
}

func TestClassify_WindowClippedAtEdge(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		GlyphAllowlist: {glyphToken("L", 0.9)},
	}}

	// Reading near the top edge: nominal window extends above y=0.
	cl := NewClassifier(fake, DefaultConfig())
	markers, err := cl.Classify(context.Background(), testutil.NewChart(testutil.StandardSize),
		[]*pressure.Reading{reading(1000, 500, 25)})
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.InDelta(t, 0, markers[0].Window.MinY, 0.5)
	assert.InDelta(t, 15, markers[0].Window.MaxY, 0.5)
}

func TestClassify_WindowFullyOffImageSkipsReading(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		GlyphAllowlist: {glyphToken("L", 0.9)},
	}}

	// Reading so close to the top that the entire glyph window is above
	// the image.
	cl := NewClassifier(fake, DefaultConfig())
	markers, err := cl.Classify(context.Background(), testutil.NewChart(testutil.StandardSize),
		[]*pressure.Reading{reading(1000, 500, 5)})
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestClassify_MarkerIDsAreSequential(t *testing.T) {
	fake := &testutil.FakeRecognizer{ByAllowlist: map[string][]recognize.Token{
		GlyphAllowlist: {glyphToken("H", 0.9)},
	}}

	cl := NewClassifier(fake, DefaultConfig())
	markers, err := cl.Classify(context.Background(), testutil.NewChart(testutil.StandardSize),
		[]*pressure.Reading{reading(1000, 500, 300), reading(988, 800, 600)})
	require.NoError(t, err)
	require.Len(t, markers, 2)
	assert.Equal(t, 0, markers[0].ID)
	assert.Equal(t, 1, markers[1].ID)
}
