package discontinuity

import (
	"log/slog"

	"github.com/synospot/synospot/internal/binimg"
	"github.com/synospot/synospot/internal/utils"
)

// Config gathers the thresholds of all detection strategies.
type Config struct {
	Shape     ShapeConfig
	Standard  ComponentConfig
	Sensitive ComponentConfig
	Scan      ScanConfig
	// SensitiveThreshold re-binarizes the softened mask for the
	// sensitive component pass.
	SensitiveThreshold uint8
	// HeaderHeightFrac and HeaderWidthFrac bound the reserved top-left
	// metadata rectangle skipped by the grid scan.
	HeaderHeightFrac float64
	HeaderWidthFrac  float64
}

// DefaultConfig returns the strategy thresholds tuned for Met Office charts.
func DefaultConfig() Config {
	return Config{
		Shape:              DefaultShapeConfig(),
		Standard:           StandardComponentConfig(),
		Sensitive:          SensitiveComponentConfig(),
		Scan:               DefaultScanConfig(),
		SensitiveThreshold: 100,
		HeaderHeightFrac:   0.11,
		HeaderWidthFrac:    0.38,
	}
}

// Detector runs the layered discontinuity strategies.
type Detector struct {
	cfg Config
}

// NewDetector creates a Detector with the given thresholds.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect runs the strategies in order of decreasing strictness over the
// standard mask and the permissive scan mask. Each strategy is handed the
// positions found so far, so a glyph confirmed by a strict pass is not
// re-flagged by a looser one. Candidates come back in discovery order.
func (d *Detector) Detect(mask, scanMask *binimg.Binary) []*Candidate {
	var cands []*Candidate
	var known []utils.Point

	add := func(found []*Candidate) {
		for _, c := range found {
			c.ID = len(cands)
			cands = append(cands, c)
			known = append(known, c.Center)
		}
	}

	add(d.detectShapes(mask, known))
	add(d.detectComponents(mask, mask, d.cfg.Standard, false, known))
	soft := binimg.Soften(mask, d.cfg.SensitiveThreshold)
	add(d.detectComponents(soft, mask, d.cfg.Sensitive, true, known))
	add(d.scanIsolated(scanMask, known))

	slog.Debug("discontinuity strategies complete", "candidates", len(cands))
	return cands
}
