// Package associate links discontinuity candidates to their nearest
// pressure system with a greedy, distance-ordered matching pass.
package associate

import (
	"log/slog"
	"sort"

	"github.com/synospot/synospot/internal/discontinuity"
	"github.com/synospot/synospot/internal/system"
	"github.com/synospot/synospot/internal/utils"
)

// Config holds the association cutoff.
type Config struct {
	// MaxDistance is the farthest a candidate may sit from a system
	// center and still be linked, in px.
	MaxDistance float64
}

// DefaultConfig returns the cutoff tuned for Met Office charts.
func DefaultConfig() Config {
	return Config{MaxDistance: 100}
}

// Link records one committed candidate-to-system pairing.
type Link struct {
	Candidate *discontinuity.Candidate
	Marker    *system.Marker
	Distance  float64
}

type pairing struct {
	cand     int
	marker   int
	distance float64
}

// Associate walks all candidate/system pairings within the cutoff in
// ascending distance order and commits each pairing whose candidate is
// still unconsumed and whose system is still unclaimed. Committed
// candidates are appended to their marker's Linked list. Ties resolve by
// candidate then marker discovery order.
func Associate(cands []*discontinuity.Candidate, markers []*system.Marker, cfg Config) []Link {
	var pairings []pairing
	for ci, c := range cands {
		for mi, m := range markers {
			d := utils.Distance(c.Center, m.Center)
			if d <= cfg.MaxDistance {
				pairings = append(pairings, pairing{cand: ci, marker: mi, distance: d})
			}
		}
	}
	sort.SliceStable(pairings, func(i, j int) bool {
		return pairings[i].distance < pairings[j].distance
	})

	used := make(map[int]bool, len(cands))
	claimed := make(map[int]bool, len(markers))
	var links []Link
	for _, p := range pairings {
		if used[p.cand] || claimed[p.marker] {
			continue
		}
		c := cands[p.cand]
		m := markers[p.marker]
		m.Linked = append(m.Linked, c.Center)
		used[p.cand] = true
		claimed[p.marker] = true
		links = append(links, Link{Candidate: c, Marker: m, Distance: p.distance})
		slog.Debug("discontinuity linked to system",
			"origin", c.Origin.String(), "kind", m.Kind.String(),
			"pressure", m.Pressure, "distance", p.distance)
	}
	return links
}
