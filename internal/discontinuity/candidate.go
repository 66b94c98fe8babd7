// Package discontinuity finds small X-shaped frontal-discontinuity glyphs
// on binarized charts using layered detection strategies, from strict
// contour analysis down to a permissive grid scan.
package discontinuity

import "github.com/synospot/synospot/internal/utils"

// Origin identifies which detection strategy produced a candidate.
type Origin int

const (
	OriginShape Origin = iota
	OriginComponent
	OriginSensitive
	OriginDistorted
	OriginIsolated
)

func (o Origin) String() string {
	switch o {
	case OriginShape:
		return "shape"
	case OriginComponent:
		return "component"
	case OriginSensitive:
		return "sensitive"
	case OriginDistorted:
		return "distorted"
	case OriginIsolated:
		return "isolated"
	}
	return "unknown"
}

// Candidate is an unconfirmed discontinuity-marker detection. IDs are
// assigned in discovery order and survive consolidation.
type Candidate struct {
	ID     int
	Center utils.Point
	Origin Origin
	Box    utils.Box
}
