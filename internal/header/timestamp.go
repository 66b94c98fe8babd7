// Package header reads the validity timestamp printed in the top-left
// corner of a chart and derives canonical names from it.
package header

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strings"

	"github.com/synospot/synospot/internal/binimg"
	"github.com/synospot/synospot/internal/recognize"
	"github.com/synospot/synospot/internal/utils"
)

// ChartTime is the validity timestamp of a chart.
type ChartTime struct {
	// Hour is the 4-digit UTC time, e.g. "0600".
	Hour    string
	Weekday string
	// Day is the 2-digit day of month.
	Day string
	// Month is the 3-letter uppercase abbreviation, e.g. "JAN".
	Month string
}

// String renders the timestamp the way it is printed on the chart.
func (t ChartTime) String() string {
	return fmt.Sprintf("%s UTC %s %s %s", t.Hour, t.Weekday, t.Day, t.Month)
}

// Slug renders the timestamp as a filename stem, e.g. "0600_UTC_Tue_02_JAN".
func (t ChartTime) Slug() string {
	return strings.ReplaceAll(t.String(), " ", "_")
}

var monthNumbers = map[string]string{
	"JAN": "01", "FEB": "02", "MAR": "03", "APR": "04",
	"MAY": "05", "JUN": "06", "JUL": "07", "AUG": "08",
	"SEP": "09", "OCT": "10", "NOV": "11", "DEC": "12",
}

// MonthNumber returns the 2-digit month, or "00" when the abbreviation is
// not recognized.
func (t ChartTime) MonthNumber() string {
	if n, ok := monthNumbers[t.Month]; ok {
		return n
	}
	return "00"
}

// Config holds the crop geometry and recognition thresholds for timestamp
// extraction.
type Config struct {
	// HeightFrac and WidthFrac bound the top-left crop as fractions of
	// the image dimensions.
	HeightFrac float64
	WidthFrac  float64
	// Threshold binarizes the crop before recognition; header text is
	// printed lighter than chart linework.
	Threshold uint8
	// MinConfidence is the floor for recognized header lines.
	MinConfidence float64
}

// DefaultConfig returns the extraction thresholds for Met Office charts.
func DefaultConfig() Config {
	return Config{
		HeightFrac:    0.1,
		WidthFrac:     0.3,
		Threshold:     170,
		MinConfidence: 0.2,
	}
}

var (
	fullPattern = regexp.MustCompile(
		`Valid\s*(\d{4})\s*UTC\s*(Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s*(\d{2})\s*(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)`)
	generalPattern = regexp.MustCompile(
		`(\d{4})?\s*UTC\s*(Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s*(\d{2})\s*(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)`)
)

// Extractor reads chart timestamps.
type Extractor struct {
	svc recognize.Service
	cfg Config
}

// NewExtractor creates an Extractor backed by the given recognition service.
func NewExtractor(svc recognize.Service, cfg Config) *Extractor {
	return &Extractor{svc: svc, cfg: cfg}
}

// Extract recognizes the top-left corner of img and parses the validity
// line. It prefers lines led by the "Valid" keyword and falls back to any
// line carrying the UTC date fields. Returns nil when no timestamp is
// legible.
func (e *Extractor) Extract(ctx context.Context, img image.Image) (*ChartTime, error) {
	bounds := img.Bounds()
	crop := utils.CropImageBox(img, utils.NewBox(
		float64(bounds.Min.X),
		float64(bounds.Min.Y),
		float64(bounds.Min.X)+float64(bounds.Dx())*e.cfg.WidthFrac,
		float64(bounds.Min.Y)+float64(bounds.Dy())*e.cfg.HeightFrac,
	))
	binary := binimg.FromImage(crop, e.cfg.Threshold).ToGray()

	tokens, err := e.svc.Recognize(ctx, binary, recognize.Options{
		MinConfidence: e.cfg.MinConfidence,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		slog.Warn("timestamp recognition failed", "error", err)
		return nil, nil
	}

	for _, pat := range []*regexp.Regexp{fullPattern, generalPattern} {
		for _, tok := range tokens {
			if tok.Confidence <= e.cfg.MinConfidence {
				continue
			}
			m := pat.FindStringSubmatch(tok.Text)
			if m == nil {
				continue
			}
			hour := m[1]
			if hour == "" {
				hour = "0000"
			}
			return &ChartTime{Hour: hour, Weekday: m[2], Day: m[3], Month: m[4]}, nil
		}
	}
	return nil, nil
}

// ParseFilename recovers a ChartTime from a canonical mask filename such
// as "0600_UTC_Tue_02_JAN_mask.jpg".
func ParseFilename(name string) (ChartTime, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 5 || parts[1] != "UTC" {
		return ChartTime{}, fmt.Errorf("filename %q does not carry a timestamp", name)
	}
	return ChartTime{
		Hour:    parts[0],
		Weekday: parts[2],
		Day:     parts[3],
		Month:   parts[4],
	}, nil
}
