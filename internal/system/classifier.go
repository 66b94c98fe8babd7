// Package system classifies pressure readings as low or high pressure
// centers by inspecting the letter glyph printed above each reading.
package system

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/synospot/synospot/internal/binimg"
	"github.com/synospot/synospot/internal/pressure"
	"github.com/synospot/synospot/internal/recognize"
	"github.com/synospot/synospot/internal/utils"
)

// GlyphAllowlist restricts recognition to the two marker letters.
const GlyphAllowlist = "LH"

// Kind is the pressure system polarity.
type Kind int

const (
	Low Kind = iota
	High
)

func (k Kind) String() string {
	if k == High {
		return "H"
	}
	return "L"
}

// Config holds the glyph-window geometry and classification thresholds.
type Config struct {
	// GlyphOffset is how far above the reading center the letter sits, in px.
	GlyphOffset int
	// WindowSize is the side length of the square glyph crop, in px.
	WindowSize int
	// MinConfidence is the recognition floor for the letter itself.
	MinConfidence float64
	// DensityRatio is the left/right foreground ratio above which the
	// density fallback declares a low (the L glyph is left-heavy).
	DensityRatio float64
	// FallbackConfidence is assigned to density-classified markers.
	FallbackConfidence float64
	// BinarizeThreshold is the gray cutoff for the density fallback mask.
	BinarizeThreshold uint8
}

// DefaultConfig returns the glyph thresholds tuned for Met Office charts.
func DefaultConfig() Config {
	return Config{
		GlyphOffset:        20,
		WindowSize:         20,
		MinConfidence:      0.1,
		DensityRatio:       1.5,
		FallbackConfidence: 0.5,
		BinarizeThreshold:  120,
	}
}

// Marker is a classified pressure system.
type Marker struct {
	ID           int
	Kind         Kind
	Center       utils.Point
	Pressure     int
	PressureQuad utils.Quad
	// Window is the glyph crop in image coordinates, after clipping.
	Window     utils.Box
	Confidence float64
	// Heuristic is true when the density fallback decided the polarity.
	Heuristic bool
	// Linked holds the centers of associated discontinuity groups.
	Linked []utils.Point
}

// Classifier derives markers from pressure readings.
type Classifier struct {
	svc recognize.Service
	cfg Config
}

// NewClassifier creates a Classifier backed by the given recognition service.
func NewClassifier(svc recognize.Service, cfg Config) *Classifier {
	return &Classifier{svc: svc, cfg: cfg}
}

// Classify inspects the glyph window above each reading and emits one marker
// per reading whose window overlaps the image. Readings that produce a
// marker are flagged as claimed.
func (c *Classifier) Classify(ctx context.Context, img image.Image, readings []*pressure.Reading) ([]*Marker, error) {
	bounds := img.Bounds()
	var markers []*Marker
	for _, r := range readings {
		if ctx.Err() != nil {
			return markers, ctx.Err()
		}
		window, ok := c.glyphWindow(r, bounds)
		if !ok {
			slog.Debug("glyph window off image, skipping reading",
				"value", r.Value, "x", r.Center.X, "y", r.Center.Y)
			continue
		}
		m := &Marker{
			ID:           len(markers),
			Center:       window.Center(),
			Pressure:     r.Value,
			PressureQuad: r.Quad,
			Window:       window,
		}
		crop := utils.CropImageBox(img, window)
		kind, conf, glyphAt, err := c.classifyGlyph(ctx, crop)
		if err != nil {
			return markers, fmt.Errorf("classifying glyph for reading %d: %w", r.Value, err)
		}
		m.Kind = kind
		m.Confidence = conf
		m.Heuristic = glyphAt == nil
		if glyphAt != nil {
			// The recognized letter's own center, mapped back from crop to
			// image coordinates, is the marker position.
			m.Center = utils.Point{X: window.MinX + glyphAt.X, Y: window.MinY + glyphAt.Y}
		}
		r.Claimed = true
		markers = append(markers, m)
		slog.Debug("system classified",
			"kind", m.Kind.String(), "pressure", m.Pressure,
			"confidence", m.Confidence, "heuristic", m.Heuristic)
	}
	return markers, nil
}

// glyphWindow returns the clipped crop rectangle for a reading's letter, and
// false when the nominal window lies entirely outside the image.
func (c *Classifier) glyphWindow(r *pressure.Reading, bounds image.Rectangle) (utils.Box, bool) {
	half := float64(c.cfg.WindowSize) / 2
	cx := r.Center.X
	cy := r.Center.Y - float64(c.cfg.GlyphOffset)
	window := utils.NewBox(cx-half, cy-half, cx+half, cy+half)

	clipped := utils.NewBox(
		max(window.MinX, float64(bounds.Min.X)),
		max(window.MinY, float64(bounds.Min.Y)),
		min(window.MaxX, float64(bounds.Max.X)),
		min(window.MaxY, float64(bounds.Max.Y)),
	)
	if clipped.Empty() {
		return utils.Box{}, false
	}
	return clipped, true
}

// classifyGlyph recognizes the cropped letter, falling back to a foreground
// density heuristic when recognition yields nothing usable. On the OCR path
// the winning token's center is returned in crop coordinates; the fallback
// returns nil.
func (c *Classifier) classifyGlyph(ctx context.Context, crop image.Image) (Kind, float64, *utils.Point, error) {
	tokens, err := c.svc.Recognize(ctx, crop, recognize.Options{
		Allowlist:     GlyphAllowlist,
		MinConfidence: c.cfg.MinConfidence,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Low, 0, nil, err
		}
		slog.Warn("glyph recognition failed, using density fallback", "error", err)
		tokens = nil
	}

	best := -1
	for i, tok := range tokens {
		if tok.Text != "L" && tok.Text != "H" {
			continue
		}
		if tok.Confidence < c.cfg.MinConfidence {
			continue
		}
		if best < 0 || tok.Confidence > tokens[best].Confidence {
			best = i
		}
	}
	if best >= 0 {
		kind := Low
		if tokens[best].Text == "H" {
			kind = High
		}
		at := tokens[best].Center()
		return kind, tokens[best].Confidence, &at, nil
	}

	return c.densityFallback(crop), c.cfg.FallbackConfidence, nil, nil
}

// densityFallback compares foreground mass between the left and right halves
// of the glyph window. The L glyph concentrates ink on its left stem; a
// balanced or right-heavy window reads as H.
func (c *Classifier) densityFallback(crop image.Image) Kind {
	mask := binimg.FromImage(crop, c.cfg.BinarizeThreshold)
	mid := mask.W / 2
	left := mask.CountRect(0, 0, mid, mask.H)
	right := mask.CountRect(mid, 0, mask.W, mask.H)
	if float64(left) > c.cfg.DensityRatio*float64(right) {
		return Low
	}
	return High
}
