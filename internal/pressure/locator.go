// Package pressure locates candidate barometric pressure readings on a
// chart by scanning the full image for 3-4 digit tokens in the plausible
// hectopascal band.
package pressure

import (
	"context"
	"image"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/synospot/synospot/internal/recognize"
	"github.com/synospot/synospot/internal/utils"
)

// DigitAllowlist restricts recognition to numeric tokens.
const DigitAllowlist = "0123456789"

// Config holds the filtering thresholds for the locator.
type Config struct {
	// MinValue and MaxValue bound the plausible pressure band in hPa.
	MinValue int
	MaxValue int
	// MinConfidence is the recognition floor for digit tokens.
	MinConfidence float64
	// HeaderHeightFrac and HeaderWidthFrac describe the reserved top-left
	// metadata rectangle as fractions of image height and width.
	HeaderHeightFrac float64
	HeaderWidthFrac  float64
}

// DefaultConfig returns the thresholds tuned for Met Office style charts.
func DefaultConfig() Config {
	return Config{
		MinValue:         950,
		MaxValue:         1050,
		MinConfidence:    0.3,
		HeaderHeightFrac: 0.11,
		HeaderWidthFrac:  0.38,
	}
}

// Reading is a retained pressure value with its recognition geometry.
// Claimed is set by the system classifier once a marker is derived from it.
type Reading struct {
	Value      int
	Center     utils.Point
	Quad       utils.Quad
	Confidence float64
	Claimed    bool
}

var digitPattern = regexp.MustCompile(`^\d{3,4}$`)

// Locator scans charts for pressure readings.
type Locator struct {
	svc recognize.Service
	cfg Config
}

// NewLocator creates a Locator backed by the given recognition service.
func NewLocator(svc recognize.Service, cfg Config) *Locator {
	return &Locator{svc: svc, cfg: cfg}
}

// Locate returns all plausible pressure readings on the chart in recognition
// scan order. A recognition failure yields an empty result, not an error;
// readings in the header region are discarded.
func (l *Locator) Locate(ctx context.Context, img image.Image) ([]*Reading, error) {
	tokens, err := l.svc.Recognize(ctx, img, recognize.Options{
		Allowlist:     DigitAllowlist,
		MinConfidence: l.cfg.MinConfidence,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		slog.Warn("pressure scan failed, treating as empty", "error", err)
		return nil, nil
	}

	bounds := img.Bounds()
	headerMaxY := float64(bounds.Dy()) * l.cfg.HeaderHeightFrac
	headerMaxX := float64(bounds.Dx()) * l.cfg.HeaderWidthFrac

	var readings []*Reading
	for _, tok := range tokens {
		if tok.Confidence < l.cfg.MinConfidence || !digitPattern.MatchString(tok.Text) {
			continue
		}
		value, err := strconv.Atoi(tok.Text)
		if err != nil {
			continue
		}
		if value < l.cfg.MinValue || value > l.cfg.MaxValue {
			continue
		}
		center := tok.Center()
		if center.Y < headerMaxY && center.X < headerMaxX {
			continue
		}
		readings = append(readings, &Reading{
			Value:      value,
			Center:     center,
			Quad:       tok.Quad,
			Confidence: tok.Confidence,
		})
		slog.Debug("pressure reading detected",
			"value", value, "x", center.X, "y", center.Y, "confidence", tok.Confidence)
	}
	return readings, nil
}
