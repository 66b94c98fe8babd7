// Package binimg provides the binary foreground mask primitive used by all
// chart detection stages, with thresholding, morphology, connected-component
// labeling and contour tracing.
package binimg

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// Binary is a foreground/background mask. Pix is row-major, true = foreground.
type Binary struct {
	W, H int
	Pix  []bool
}

// New creates an empty (all background) mask.
func New(w, h int) *Binary {
	return &Binary{W: w, H: h, Pix: make([]bool, w*h)}
}

// FromImage binarizes an image: pixels whose gray value exceeds threshold
// become foreground. Charts are printed dark-on-light and pre-masked to
// white-on-black, so foreground is the bright side.
func FromImage(img image.Image, threshold uint8) *Binary {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	out := New(b.Dx(), b.Dy())
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			c := gray.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			if c.R > threshold {
				out.Pix[y*out.W+x] = true
			}
		}
	}
	return out
}

// FromGray binarizes an 8-bit grayscale image directly.
func FromGray(g *image.Gray, threshold uint8) *Binary {
	b := g.Bounds()
	out := New(b.Dx(), b.Dy())
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			if g.GrayAt(b.Min.X+x, b.Min.Y+y).Y > threshold {
				out.Pix[y*out.W+x] = true
			}
		}
	}
	return out
}

// Soften blurs the mask with a small Gaussian kernel and re-thresholds it,
// producing a more permissive mask that bridges thin or broken glyph strokes.
func Soften(b *Binary, threshold uint8) *Binary {
	blurred := blur.Gaussian(b.ToGray(), 1.0)
	g := image.NewGray(blurred.Bounds())
	for y := blurred.Bounds().Min.Y; y < blurred.Bounds().Max.Y; y++ {
		for x := blurred.Bounds().Min.X; x < blurred.Bounds().Max.X; x++ {
			g.Set(x, y, blurred.At(x, y))
		}
	}
	return FromGray(g, threshold)
}

// At reports whether (x, y) is foreground. Out-of-bounds reads are background.
func (b *Binary) At(x, y int) bool {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return false
	}
	return b.Pix[y*b.W+x]
}

// Set assigns the pixel at (x, y). Out-of-bounds writes are ignored.
func (b *Binary) Set(x, y int, v bool) {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return
	}
	b.Pix[y*b.W+x] = v
}

// Clone returns a deep copy of the mask.
func (b *Binary) Clone() *Binary {
	out := New(b.W, b.H)
	copy(out.Pix, b.Pix)
	return out
}

// Count returns the total number of foreground pixels.
func (b *Binary) Count() int {
	n := 0
	for _, v := range b.Pix {
		if v {
			n++
		}
	}
	return n
}

// CountRect counts foreground pixels in the half-open rectangle
// [x1,x2) x [y1,y2), clamped to the mask bounds.
func (b *Binary) CountRect(x1, y1, x2, y2 int) int {
	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > b.W {
		x2 = b.W
	}
	if y2 > b.H {
		y2 = b.H
	}
	n := 0
	for y := y1; y < y2; y++ {
		row := b.Pix[y*b.W : y*b.W+b.W]
		for x := x1; x < x2; x++ {
			if row[x] {
				n++
			}
		}
	}
	return n
}

// ClearRect sets the half-open rectangle [x1,x2) x [y1,y2) to background.
// Used to blank the reserved header region before detection.
func (b *Binary) ClearRect(x1, y1, x2, y2 int) {
	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > b.W {
		x2 = b.W
	}
	if y2 > b.H {
		y2 = b.H
	}
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			b.Pix[y*b.W+x] = false
		}
	}
}

// ToGray renders the mask as an 8-bit grayscale image (foreground = 255).
func (b *Binary) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.Pix[y*b.W+x] {
				g.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return g
}
