package binimg

import (
	"container/list"

	"github.com/synospot/synospot/internal/utils"
)

// Component holds statistics for one 8-connected foreground component.
type Component struct {
	Area     int
	MinX     int
	MinY     int
	MaxX     int
	MaxY     int
	Centroid utils.Point
}

// Width returns the bounding-box width in pixels.
func (c Component) Width() int { return c.MaxX - c.MinX + 1 }

// Height returns the bounding-box height in pixels.
func (c Component) Height() int { return c.MaxY - c.MinY + 1 }

// AspectRatio returns width/height, or 0 for a degenerate component.
func (c Component) AspectRatio() float64 {
	h := c.Height()
	if h == 0 {
		return 0
	}
	return float64(c.Width()) / float64(h)
}

// Box returns the bounding box as a float Box covering the pixel extents.
func (c Component) Box() utils.Box {
	return utils.NewBox(float64(c.MinX), float64(c.MinY), float64(c.MaxX+1), float64(c.MaxY+1))
}

// FillRatio returns the fraction of bounding-box pixels that are foreground.
func (c Component) FillRatio() float64 {
	n := c.Width() * c.Height()
	if n == 0 {
		return 0
	}
	return float64(c.Area) / float64(n)
}

// Components finds 8-connected foreground components in scan order and
// returns their statistics together with a per-pixel label map (labels start
// at 1; 0 means background).
func Components(b *Binary) ([]Component, []int) {
	labels := make([]int, b.W*b.H)
	var comps []Component
	label := 1

	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			idx := y*b.W + x
			if b.Pix[idx] && labels[idx] == 0 {
				comps = append(comps, componentBFS(b, labels, x, y, label))
				label++
			}
		}
	}
	return comps, labels
}

var eightDirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// componentBFS flood-fills one component from a seed pixel and accumulates
// its area, bounding box and centroid.
func componentBFS(b *Binary, labels []int, startX, startY, label int) Component {
	st := Component{MinX: startX, MinY: startY, MaxX: startX, MaxY: startY}
	sumX, sumY := 0.0, 0.0

	q := list.New()
	startIdx := startY*b.W + startX
	labels[startIdx] = label
	q.PushBack(startIdx)

	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%b.W, ci/b.W

		st.Area++
		sumX += float64(cx)
		sumY += float64(cy)
		if cx < st.MinX {
			st.MinX = cx
		}
		if cy < st.MinY {
			st.MinY = cy
		}
		if cx > st.MaxX {
			st.MaxX = cx
		}
		if cy > st.MaxY {
			st.MaxY = cy
		}

		for _, d := range eightDirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx >= 0 && nx < b.W && ny >= 0 && ny < b.H {
				ni := ny*b.W + nx
				if b.Pix[ni] && labels[ni] == 0 {
					labels[ni] = label
					q.PushBack(ni)
				}
			}
		}
	}

	if st.Area > 0 {
		st.Centroid = utils.Point{X: sumX / float64(st.Area), Y: sumY / float64(st.Area)}
	}
	return st
}
