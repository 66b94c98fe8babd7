package discontinuity

import (
	"math"

	"github.com/synospot/synospot/internal/binimg"
	"github.com/synospot/synospot/internal/utils"
)

// ShapeConfig holds the contour-analysis thresholds of the strict strategy.
type ShapeConfig struct {
	// KernelSize is the window for the noise-smoothing open pass.
	KernelSize int
	// MinArea and MaxArea bound the contour area in px².
	MinArea float64
	MaxArea float64
	// MinAspect and MaxAspect bound the bounding-box width/height ratio.
	MinAspect float64
	MaxAspect float64
	// MinFill and MaxFill bound the foreground ratio inside the bounding
	// box. An X glyph is neither hollow nor solid.
	MinFill float64
	MaxFill float64
	// BorderMargin excludes centers within this many px of the image edge.
	BorderMargin float64
	// DuplicateDistSq rejects centers this close (squared px) to a known
	// position.
	DuplicateDistSq float64
}

// DefaultShapeConfig returns the strict contour thresholds.
func DefaultShapeConfig() ShapeConfig {
	return ShapeConfig{
		KernelSize:      3,
		MinArea:         5,
		MaxArea:         100,
		MinAspect:       0.5,
		MaxAspect:       2.0,
		MinFill:         0.2,
		MaxFill:         0.8,
		BorderMargin:    10,
		DuplicateDistSq: 100,
	}
}

// detectShapes opens the mask to drop speckle, traces external contours and
// keeps those whose area, aspect and fill ratio look like an X glyph. Fill
// is measured on the unopened mask so thin strokes count fully.
func (d *Detector) detectShapes(mask *binimg.Binary, known []utils.Point) []*Candidate {
	cfg := d.cfg.Shape
	opened := binimg.Open(mask, cfg.KernelSize)
	comps, labels := binimg.Components(opened)

	var found []*Candidate
	for i, comp := range comps {
		contour := binimg.TraceContour(labels, opened.W, opened.H, i+1, comp)
		if len(contour) < 3 {
			continue
		}
		area := math.Abs(utils.PolygonArea(contour))
		if area < cfg.MinArea || area > cfg.MaxArea {
			continue
		}

		box := comp.Box()
		center := box.Center()
		if isDuplicate(center, known, cfg.DuplicateDistSq) {
			continue
		}
		if nearBorder(center, mask.W, mask.H, cfg.BorderMargin) {
			continue
		}

		aspect := comp.AspectRatio()
		if aspect < cfg.MinAspect || aspect > cfg.MaxAspect {
			continue
		}

		w, h := comp.Width(), comp.Height()
		if w*h == 0 {
			continue
		}
		fill := float64(mask.CountRect(comp.MinX, comp.MinY, comp.MaxX+1, comp.MaxY+1)) / float64(w*h)
		if fill < cfg.MinFill || fill > cfg.MaxFill {
			continue
		}

		found = append(found, &Candidate{
			Center: center,
			Origin: OriginShape,
			Box:    box,
		})
	}
	return found
}

func isDuplicate(p utils.Point, known []utils.Point, distSq float64) bool {
	for _, k := range known {
		if utils.SquaredDistance(p, k) < distSq {
			return true
		}
	}
	return false
}

func nearBorder(p utils.Point, w, h int, margin float64) bool {
	return p.X < margin || p.X > float64(w)-margin ||
		p.Y < margin || p.Y > float64(h)-margin
}
