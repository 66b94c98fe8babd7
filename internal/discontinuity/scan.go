package discontinuity

import (
	"github.com/synospot/synospot/internal/binimg"
	"github.com/synospot/synospot/internal/utils"
)

// ScanConfig holds the thresholds of the grid-scan fallback strategy.
type ScanConfig struct {
	// Stride is the grid step in px.
	Stride int
	// ProbeSize is the side of the sampled neighborhood in px.
	ProbeSize int
	// DuplicateDistSq rejects probe centers this close (squared px) to a
	// known position.
	DuplicateDistSq float64
}

// DefaultScanConfig returns the grid-scan thresholds.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Stride:          5,
		ProbeSize:       10,
		DuplicateDistSq: 400,
	}
}

// scanIsolated strides the permissive scan mask and registers any probe
// window that still contains foreground nobody else claimed. Each hit is
// added to the known set immediately so neighboring strides cannot
// re-trigger on the same blob. The header rectangle is skipped outright.
func (d *Detector) scanIsolated(scanMask *binimg.Binary, known []utils.Point) []*Candidate {
	cfg := d.cfg.Scan
	headerH := int(float64(scanMask.H) * d.cfg.HeaderHeightFrac)
	headerW := int(float64(scanMask.W) * d.cfg.HeaderWidthFrac)
	half := cfg.ProbeSize / 2

	seen := make([]utils.Point, len(known))
	copy(seen, known)

	var found []*Candidate
	for y := 0; y < scanMask.H; y += cfg.Stride {
		for x := 0; x < scanMask.W; x += cfg.Stride {
			if y < headerH && x < headerW {
				continue
			}
			x1 := max(0, x-half)
			x2 := min(scanMask.W, x+half)
			y1 := max(0, y-half)
			y2 := min(scanMask.H, y+half)
			if scanMask.CountRect(x1, y1, x2, y2) == 0 {
				continue
			}
			center := utils.Point{
				X: float64(x1+x2) / 2,
				Y: float64(y1+y2) / 2,
			}
			if isDuplicate(center, seen, cfg.DuplicateDistSq) {
				continue
			}
			found = append(found, &Candidate{
				Center: center,
				Origin: OriginIsolated,
				Box:    utils.NewBox(float64(x1), float64(y1), float64(x2), float64(y2)),
			})
			seen = append(seen, center)
		}
	}
	return found
}
