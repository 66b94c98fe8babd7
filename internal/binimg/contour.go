package binimg

import "github.com/synospot/synospot/internal/utils"

// TraceContour extracts the external boundary polygon for the given labeled
// component using Moore-Neighbor tracing. The search is restricted to the
// component's bounding box. Returned points are pixel-center coordinates;
// collinear runs are collapsed.
func TraceContour(labels []int, w, h, label int, c Component) []utils.Point {
	if label <= 0 || len(labels) != w*h {
		return nil
	}

	sx, sy := findBoundaryStart(labels, w, h, label, c)
	if sx == -1 {
		return nil
	}

	pts := make([]utils.Point, 0, 32)
	addPoint := func(x, y int) {
		p := utils.Point{X: float64(x), Y: float64(y)}
		n := len(pts)
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			cross := (b.X-a.X)*(p.Y-b.Y) - (b.Y-a.Y)*(p.X-b.X)
			if cross == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy // backtrack to the left of start
	addPoint(cx, cy)

	startCx, startCy := cx, cy
	startBx, startBy := bx, by
	maxSteps := w*h*4 + 8

	for steps := 0; steps < maxSteps; steps++ {
		nx, ny, nbx, nby, found := nextBoundaryPixel(labels, w, h, label, cx, cy, bx, by)
		if !found {
			break
		}
		bx, by = nbx, nby
		cx, cy = nx, ny

		if len(pts) == 0 || pts[len(pts)-1].X != float64(cx) || pts[len(pts)-1].Y != float64(cy) {
			addPoint(cx, cy)
		}
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
	}

	if len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// findBoundaryStart locates the first pixel of the component that touches
// background, scanning the bounding box in raster order.
func findBoundaryStart(labels []int, w, h, label int, c Component) (int, int) {
	for y := c.MinY; y <= c.MaxY; y++ {
		for x := c.MinX; x <= c.MaxX; x++ {
			if isBoundaryPixel(labels, w, h, label, x, y) {
				return x, y
			}
		}
	}
	for y := c.MinY; y <= c.MaxY; y++ {
		for x := c.MinX; x <= c.MaxX; x++ {
			if labels[y*w+x] == label {
				return x, y
			}
		}
	}
	return -1, -1
}

func isBoundaryPixel(labels []int, w, h, label, x, y int) bool {
	if x < 0 || x >= w || y < 0 || y >= h || labels[y*w+x] != label {
		return false
	}
	for _, d := range eightDirs {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= w || ny < 0 || ny >= h || labels[ny*w+nx] != label {
			return true
		}
	}
	return false
}

// mooreOrder walks the 8-neighborhood clockwise starting from the east.
var mooreOrder = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// nextBoundaryPixel finds the next component pixel clockwise from the
// backtrack position around the current pixel.
func nextBoundaryPixel(labels []int, w, h, label, cx, cy, bx, by int) (int, int, int, int, bool) {
	start := 0
	for i, d := range mooreOrder {
		if cx+d[0] == bx && cy+d[1] == by {
			start = i
			break
		}
	}
	prevX, prevY := bx, by
	for i := 1; i <= len(mooreOrder); i++ {
		d := mooreOrder[(start+i)%len(mooreOrder)]
		nx, ny := cx+d[0], cy+d[1]
		if nx >= 0 && nx < w && ny >= 0 && ny < h && labels[ny*w+nx] == label {
			return nx, ny, prevX, prevY, true
		}
		prevX, prevY = nx, ny
	}
	return 0, 0, 0, 0, false
}
