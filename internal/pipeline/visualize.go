package pipeline

import (
	"image"
	"image/color"
	"image/draw"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/synospot/synospot/internal/utils"
)

// Overlay palette: systems keep the conventional chart colors, candidate
// origins fan out across the warm hues so provenance is visible at a
// glance.
var (
	lowColor  = rgba(colorful.Hsv(120, 1, 0.9)) // green
	highColor = rgba(colorful.Hsv(0, 1, 0.9))   // red
	linkColor = rgba(colorful.Hsv(200, 0.6, 1)) // pale blue

	originHues = map[string]float64{
		"shape":     60,
		"component": 45,
		"sensitive": 30,
		"distorted": 20,
		"isolated":  330,
	}
)

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func originColor(origin string) color.RGBA {
	hue, ok := originHues[origin]
	if !ok {
		hue = 0
	}
	return rgba(colorful.Hsv(hue, 1, 1))
}

// Overlay renders the extraction result onto a copy of the chart: a circle
// per system, a dot per candidate colored by origin, and a line from each
// linked candidate to its system.
func Overlay(img image.Image, result *ChartResult) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for _, c := range result.Candidates {
		utils.DrawCircle(out, pt(c.Center), 4, originColor(c.Origin), 2)
	}
	for _, s := range result.Systems {
		col := lowColor
		if s.Kind == "H" {
			col = highColor
		}
		utils.DrawCircle(out, pt(s.Center), 15, col, 2)
		for _, m := range s.Markers {
			utils.DrawLine(out, pt(s.Center), pt(m), linkColor, 1)
		}
	}
	return out
}

func pt(p utils.Point) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}
