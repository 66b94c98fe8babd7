// Package testutil provides synthetic chart images and a scripted
// recognition service for tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ChartSize represents chart image dimensions.
type ChartSize struct {
	Width  int
	Height int
}

// StandardSize matches the working resolution of the charts the pipeline
// is tuned for.
var StandardSize = ChartSize{Width: 1200, Height: 900}

// NewChart creates a blank chart mask image: black background, features are
// drawn white the way the binarized charts arrive.
func NewChart(size ChartSize) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)
	return img
}

// DrawBlob fills a size x size white square centered at (cx, cy). Used to
// plant discontinuity-marker shaped features.
func DrawBlob(img *image.RGBA, cx, cy, size int) {
	half := size / 2
	for y := cy - half; y < cy-half+size; y++ {
		for x := cx - half; x < cx-half+size; x++ {
			if image.Pt(x, y).In(img.Bounds()) {
				img.Set(x, y, color.White)
			}
		}
	}
}

// DrawCross draws an X-shaped marker of the given arm length centered at
// (cx, cy), the glyph the discontinuity detector is meant to find.
func DrawCross(img *image.RGBA, cx, cy, arm int) {
	for d := -arm; d <= arm; d++ {
		for _, p := range []image.Point{
			{X: cx + d, Y: cy + d},
			{X: cx + d, Y: cy - d},
		} {
			if p.In(img.Bounds()) {
				img.Set(p.X, p.Y, color.White)
			}
		}
	}
}

// DrawLabel renders text in white at the baseline position using the basic
// 7x13 test font.
func DrawLabel(img *image.RGBA, text string, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{color.White},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
