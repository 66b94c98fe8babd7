package utils

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBox_OrdersCoordinates(t *testing.T) {
	b := NewBox(10, 20, 2, 4)
	assert.Equal(t, 2.0, b.MinX)
	assert.Equal(t, 4.0, b.MinY)
	assert.Equal(t, 10.0, b.MaxX)
	assert.Equal(t, 20.0, b.MaxY)
	assert.Equal(t, 8.0, b.Width())
	assert.Equal(t, 16.0, b.Height())
}

func TestBox_ContainsAndExpand(t *testing.T) {
	b := NewBox(10, 10, 20, 20)
	assert.True(t, b.Contains(Point{X: 15, Y: 15}))
	assert.True(t, b.Contains(Point{X: 10, Y: 20})) // edges inclusive
	assert.False(t, b.Contains(Point{X: 9, Y: 15}))

	e := b.Expand(3)
	assert.True(t, e.Contains(Point{X: 8, Y: 22}))
	assert.False(t, e.Contains(Point{X: 6, Y: 15}))
}

func TestBox_ToRect_Clamps(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	r := NewBox(-5, -5, 50.4, 50.6).ToRect(bounds)
	assert.Equal(t, image.Rect(0, 0, 51, 51), r)

	empty := NewBox(200, 200, 300, 300).ToRect(bounds)
	assert.True(t, empty.Empty())
}

func TestDistance(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}
	assert.InDelta(t, 5.0, Distance(a, b), 1e-9)
	assert.InDelta(t, 25.0, SquaredDistance(a, b), 1e-9)
}

func TestQuad_CenterAndBoundingBox(t *testing.T) {
	q := Quad{{10, 10}, {30, 10}, {30, 20}, {10, 20}}
	c := q.Center()
	assert.Equal(t, Point{X: 20, Y: 15}, c)

	bb := q.BoundingBox()
	assert.Equal(t, Box{MinX: 10, MinY: 10, MaxX: 30, MaxY: 20}, bb)
}

func TestQuad_Contains(t *testing.T) {
	// A tilted quadrilateral, as recognition backends can return.
	q := Quad{{10, 0}, {20, 10}, {10, 20}, {0, 10}}

	assert.True(t, q.Contains(Point{X: 10, Y: 10}))
	assert.True(t, q.Contains(Point{X: 14, Y: 10}))
	assert.False(t, q.Contains(Point{X: 1, Y: 1}))
	assert.False(t, q.Contains(Point{X: 19, Y: 19}))
}

func TestQuad_Offset(t *testing.T) {
	q := Quad{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	moved := q.Offset(5, 7)
	assert.Equal(t, Point{X: 5, Y: 7}, moved[0])
	assert.Equal(t, Point{X: 15, Y: 17}, moved[2])
}

func TestPolygonArea(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.InDelta(t, 100.0, PolygonArea(square), 1e-9)

	tri := []Point{{0, 0}, {10, 0}, {0, 10}}
	assert.InDelta(t, 50.0, PolygonArea(tri), 1e-9)

	assert.Equal(t, 0.0, PolygonArea([]Point{{0, 0}, {1, 1}}))
}

func TestBoundingBox_Points(t *testing.T) {
	pts := []Point{{5, 9}, {1, 3}, {7, 2}}
	bb := BoundingBox(pts)
	assert.Equal(t, Box{MinX: 1, MinY: 2, MaxX: 7, MaxY: 9}, bb)
	assert.Equal(t, Box{}, BoundingBox(nil))
}
