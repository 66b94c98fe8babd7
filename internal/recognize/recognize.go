// Package recognize defines the text recognition contract used by the chart
// pipeline and its Tesseract-backed implementation. The service is
// constructed once per batch run, shared across charts, and closed when the
// batch completes.
package recognize

import (
	"context"
	"image"

	"github.com/synospot/synospot/internal/utils"
)

// Token is one recognized text fragment with its quadrilateral bounding box
// and a confidence in [0,1].
type Token struct {
	Quad       utils.Quad
	Text       string
	Confidence float64
}

// Center returns the token's bounding-quad center.
func (t Token) Center() utils.Point { return t.Quad.Center() }

// Options restricts a recognition call.
type Options struct {
	// Allowlist limits recognition to the given characters ("" = no limit).
	Allowlist string
	// MinConfidence drops tokens below this confidence floor.
	MinConfidence float64
}

// Service performs text recognition on an image region. Implementations must
// tolerate many calls per chart without state leaking between calls.
type Service interface {
	Recognize(ctx context.Context, img image.Image, opts Options) ([]Token, error)
	Close() error
}
