package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawRectAndPolygon(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	green := color.RGBA{G: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	DrawRect(img, image.Rect(5, 5, 20, 20), green, 1)
	assert.Equal(t, green, img.RGBAAt(5, 5))
	assert.Equal(t, green, img.RGBAAt(19, 19))

	DrawPolygon(img, []Point{{25, 25}, {35, 25}, {35, 35}}, blue, 1)
	assert.Equal(t, blue, img.RGBAAt(25, 25))
	assert.Equal(t, blue, img.RGBAAt(35, 35))
}

func TestDrawLine_Endpoints(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	red := color.RGBA{R: 255, A: 255}
	DrawLine(img, image.Pt(1, 1), image.Pt(15, 9), red, 1)
	assert.Equal(t, red, img.RGBAAt(1, 1))
	assert.Equal(t, red, img.RGBAAt(15, 9))
}

func TestDrawCircle_StaysOnRing(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	red := color.RGBA{R: 255, A: 255}
	DrawCircle(img, image.Pt(20, 20), 8, red, 1)
	// Points on the axes of the ring must be set, the center untouched.
	assert.Equal(t, red, img.RGBAAt(28, 20))
	assert.Equal(t, red, img.RGBAAt(20, 12))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(20, 20))
}
