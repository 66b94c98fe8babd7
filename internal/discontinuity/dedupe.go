package discontinuity

import (
	"sort"

	"github.com/synospot/synospot/internal/utils"
)

// ConsolidateRadius is the default merge distance in px: strategies often
// flag the two halves of one glyph separately.
const ConsolidateRadius = 10.0

// Consolidate merges candidates within maxDistance of each other into one
// candidate at the group's mean center. Candidates are walked in ascending
// x order; a candidate joins the open group when it is within maxDistance
// of any member. The merged candidate keeps the ID, origin and box of the
// group's first member.
func Consolidate(cands []*Candidate, maxDistance float64) []*Candidate {
	if len(cands) == 0 {
		return nil
	}

	sorted := make([]*Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Center.X < sorted[j].Center.X
	})

	var merged []*Candidate
	group := []*Candidate{sorted[0]}
	flush := func() {
		var sx, sy float64
		for _, m := range group {
			sx += m.Center.X
			sy += m.Center.Y
		}
		n := float64(len(group))
		out := *group[0]
		out.Center = utils.Point{X: sx / n, Y: sy / n}
		merged = append(merged, &out)
	}

	for _, c := range sorted[1:] {
		near := false
		for _, m := range group {
			if utils.Distance(c.Center, m.Center) <= maxDistance {
				near = true
				break
			}
		}
		if near {
			group = append(group, c)
		} else {
			flush()
			group = []*Candidate{c}
		}
	}
	flush()
	return merged
}

// ContainmentMargin is how far exclusion zones are grown in px before the
// center-in-zone test.
const ContainmentMargin = 3.0

// FilterContained drops candidates whose center falls inside any of the
// given recognition quads or windows, each grown by margin. Quads are
// tested both as polygons and as expanded bounding boxes so slanted
// recognition geometry still excludes its full extent.
func FilterContained(cands []*Candidate, quads []utils.Quad, boxes []utils.Box, margin float64) []*Candidate {
	var kept []*Candidate
	for _, c := range cands {
		if insideAnyZone(c.Center, quads, boxes, margin) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func insideAnyZone(p utils.Point, quads []utils.Quad, boxes []utils.Box, margin float64) bool {
	for _, q := range quads {
		if q.Contains(p) || q.BoundingBox().Expand(margin).Contains(p) {
			return true
		}
	}
	for _, b := range boxes {
		if b.Expand(margin).Contains(p) {
			return true
		}
	}
	return false
}
