package discontinuity

import (
	"github.com/synospot/synospot/internal/binimg"
	"github.com/synospot/synospot/internal/utils"
)

// ComponentConfig holds the thresholds for one connected-component pass.
type ComponentConfig struct {
	// MinArea and MaxArea bound the component pixel count.
	MinArea int
	MaxArea int
	// MinAspect and MaxAspect bound the bounding-box width/height ratio.
	MinAspect float64
	MaxAspect float64
	// BorderMargin excludes centroids within this many px of the edge.
	BorderMargin float64
	// DuplicateDistSq rejects centroids this close (squared px) to a
	// known position.
	DuplicateDistSq float64
	// DistortedMaxArea and DistortedRadius control the provenance check
	// of the sensitive pass: a component below DistortedMaxArea px with
	// foreground on the standard mask within DistortedRadius px is tagged
	// as a distorted fragment of a stroked glyph rather than a faint one.
	DistortedMaxArea int
	DistortedRadius  int
}

// StandardComponentConfig returns the tight thresholds used on the
// standard mask.
func StandardComponentConfig() ComponentConfig {
	return ComponentConfig{
		MinArea:         5,
		MaxArea:         100,
		MinAspect:       0.3,
		MaxAspect:       2.0,
		BorderMargin:    10,
		DuplicateDistSq: 100,
	}
}

// SensitiveComponentConfig returns the looser thresholds used on the
// softened mask.
func SensitiveComponentConfig() ComponentConfig {
	return ComponentConfig{
		MinArea:          2,
		MaxArea:          150,
		MinAspect:        0.3,
		MaxAspect:        3.0,
		BorderMargin:     5,
		DuplicateDistSq:  200,
		DistortedMaxArea: 10,
		DistortedRadius:  15,
	}
}

// detectComponents labels mask with 8-connectivity and keeps components
// passing cfg's area, aspect and border tests. base is the standard mask,
// consulted only for the distorted-provenance check of the sensitive pass.
func (d *Detector) detectComponents(mask, base *binimg.Binary, cfg ComponentConfig, sensitive bool, known []utils.Point) []*Candidate {
	comps, _ := binimg.Components(mask)

	var found []*Candidate
	for _, comp := range comps {
		if comp.Area < cfg.MinArea || comp.Area > cfg.MaxArea {
			continue
		}
		aspect := comp.AspectRatio()
		if aspect < cfg.MinAspect || aspect > cfg.MaxAspect {
			continue
		}
		center := comp.Centroid
		if nearBorder(center, mask.W, mask.H, cfg.BorderMargin) {
			continue
		}
		if isDuplicate(center, known, cfg.DuplicateDistSq) {
			continue
		}
		dup := false
		for _, prior := range found {
			if utils.SquaredDistance(center, prior.Center) < cfg.DuplicateDistSq {
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		origin := OriginComponent
		if sensitive {
			origin = OriginSensitive
			if comp.Area < cfg.DistortedMaxArea && d.hasNearbyForeground(base, center, cfg.DistortedRadius) {
				origin = OriginDistorted
			}
		}
		found = append(found, &Candidate{
			Center: comp.Centroid,
			Origin: origin,
			Box:    comp.Box(),
		})
	}
	return found
}

// hasNearbyForeground reports whether the standard mask has any foreground
// in the square neighborhood of p.
func (d *Detector) hasNearbyForeground(base *binimg.Binary, p utils.Point, radius int) bool {
	cx, cy := int(p.X), int(p.Y)
	return base.CountRect(cx-radius, cy-radius, cx+radius, cy+radius) > 0
}
