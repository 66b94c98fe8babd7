package binimg

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grayPatch builds a gray image from a byte grid for threshold tests.
func grayPatch(rows [][]uint8) *image.Gray {
	h := len(rows)
	w := len(rows[0])
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, v := range row {
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return g
}

func TestFromGray_Threshold(t *testing.T) {
	g := grayPatch([][]uint8{
		{0, 120, 121},
		{255, 119, 200},
	})
	b := FromGray(g, 120)

	assert.False(t, b.At(0, 0))
	assert.False(t, b.At(1, 0)) // exactly at threshold stays background
	assert.True(t, b.At(2, 0))
	assert.True(t, b.At(0, 1))
	assert.False(t, b.At(1, 1))
	assert.Equal(t, 3, b.Count())
}

func TestAt_OutOfBounds(t *testing.T) {
	b := New(4, 4)
	b.Set(0, 0, true)
	assert.False(t, b.At(-1, 0))
	assert.False(t, b.At(0, 4))
	b.Set(-1, -1, true) // ignored
	assert.Equal(t, 1, b.Count())
}

func TestCountRect_Clamped(t *testing.T) {
	b := New(10, 10)
	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			b.Set(x, y, true)
		}
	}
	assert.Equal(t, 9, b.CountRect(0, 0, 10, 10))
	assert.Equal(t, 4, b.CountRect(3, 3, 20, 20))
	assert.Equal(t, 0, b.CountRect(6, 6, 9, 9))
}

func TestClearRect(t *testing.T) {
	b := New(10, 10)
	for i := range b.Pix {
		b.Pix[i] = true
	}
	b.ClearRect(0, 0, 4, 3)
	assert.False(t, b.At(0, 0))
	assert.False(t, b.At(3, 2))
	assert.True(t, b.At(4, 0))
	assert.True(t, b.At(0, 3))
	assert.Equal(t, 100-12, b.Count())
}

func TestSoften_BridgesGaps(t *testing.T) {
	// Two foreground pixels separated by a one-pixel gap; blurring at a
	// low threshold should keep (and usually join) the neighborhood.
	b := New(9, 9)
	b.Set(3, 4, true)
	b.Set(5, 4, true)

	soft := Soften(b, 10)
	assert.True(t, soft.Count() >= b.Count())
	assert.True(t, soft.At(3, 4) || soft.At(4, 4))
}

func TestErodeDilateOpen(t *testing.T) {
	// 5x5 solid block plus an isolated speck.
	b := New(12, 12)
	for y := 2; y < 7; y++ {
		for x := 2; x < 7; x++ {
			b.Set(x, y, true)
		}
	}
	b.Set(10, 10, true)

	eroded := Erode(b, 3)
	assert.True(t, eroded.At(4, 4))
	assert.False(t, eroded.At(2, 2)) // boundary eroded
	assert.False(t, eroded.At(10, 10))

	opened := Open(b, 3)
	assert.True(t, opened.At(4, 4))
	assert.False(t, opened.At(10, 10)) // speck removed
	// Opening must not grow beyond the original block.
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			if opened.At(x, y) {
				assert.True(t, b.At(x, y), "opened mask grew at (%d,%d)", x, y)
			}
		}
	}

	dilated := Dilate(b, 3)
	assert.True(t, dilated.At(1, 1))
	assert.True(t, dilated.At(9, 9))
}

func TestComponents_StatsAndLabels(t *testing.T) {
	// Two components: a 2x2 block and a diagonal pair (8-connected).
	b := New(8, 8)
	b.Set(1, 1, true)
	b.Set(2, 1, true)
	b.Set(1, 2, true)
	b.Set(2, 2, true)

	b.Set(5, 5, true)
	b.Set(6, 6, true)

	comps, labels := Components(b)
	require.Len(t, comps, 2)

	block := comps[0]
	assert.Equal(t, 4, block.Area)
	assert.Equal(t, 2, block.Width())
	assert.Equal(t, 2, block.Height())
	assert.InDelta(t, 1.5, block.Centroid.X, 1e-9)
	assert.InDelta(t, 1.5, block.Centroid.Y, 1e-9)
	assert.InDelta(t, 1.0, block.AspectRatio(), 1e-9)
	assert.InDelta(t, 1.0, block.FillRatio(), 1e-9)

	diag := comps[1]
	assert.Equal(t, 2, diag.Area, "diagonal neighbors must join under 8-connectivity")
	assert.InDelta(t, 0.5, diag.FillRatio(), 1e-9)

	// Label map covers exactly the foreground.
	labeled := 0
	for _, l := range labels {
		if l != 0 {
			labeled++
		}
	}
	assert.Equal(t, 6, labeled)
}

func TestTraceContour_Square(t *testing.T) {
	b := New(10, 10)
	for y := 2; y < 6; y++ {
		for x := 3; x < 7; x++ {
			b.Set(x, y, true)
		}
	}
	comps, labels := Components(b)
	require.Len(t, comps, 1)

	poly := TraceContour(labels, b.W, b.H, 1, comps[0])
	require.NotEmpty(t, poly)

	// The traced boundary must stay on the component's bounding box.
	for _, p := range poly {
		assert.GreaterOrEqual(t, p.X, 3.0)
		assert.LessOrEqual(t, p.X, 6.0)
		assert.GreaterOrEqual(t, p.Y, 2.0)
		assert.LessOrEqual(t, p.Y, 5.0)
	}
}

func TestTraceContour_SinglePixel(t *testing.T) {
	b := New(5, 5)
	b.Set(2, 2, true)
	comps, labels := Components(b)
	require.Len(t, comps, 1)

	poly := TraceContour(labels, b.W, b.H, 1, comps[0])
	require.Len(t, poly, 1)
	assert.Equal(t, 2.0, poly[0].X)
	assert.Equal(t, 2.0, poly[0].Y)
}
