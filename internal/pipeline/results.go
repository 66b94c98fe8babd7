package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/synospot/synospot/internal/discontinuity"
	"github.com/synospot/synospot/internal/header"
	"github.com/synospot/synospot/internal/system"
	"github.com/synospot/synospot/internal/utils"
)

// Timestamp is the chart validity time carried into results.
type Timestamp struct {
	Hour    string `json:"hour"`
	Weekday string `json:"weekday"`
	Day     string `json:"day"`
	Month   string `json:"month"` // 2-digit month number
}

func newTimestamp(ct *header.ChartTime) *Timestamp {
	if ct == nil {
		return nil
	}
	return &Timestamp{
		Hour:    ct.Hour,
		Weekday: ct.Weekday,
		Day:     ct.Day,
		Month:   ct.MonthNumber(),
	}
}

// SystemRecord is one classified pressure system in a result.
type SystemRecord struct {
	Kind       string        `json:"kind"` // "L" or "H"
	Pressure   int           `json:"pressure"`
	Center     utils.Point   `json:"center"`
	Confidence float64       `json:"confidence"`
	Heuristic  bool          `json:"heuristic"`
	Markers    []utils.Point `json:"markers"` // linked discontinuity centers
}

// CandidateRecord is one surviving discontinuity candidate.
type CandidateRecord struct {
	Center utils.Point `json:"center"`
	Origin string      `json:"origin"`
	Linked bool        `json:"linked"`
}

// Parameters echoes the detection constants a result was produced with.
type Parameters struct {
	GlyphOffset     int     `json:"glyph_offset"`
	MaxLinkDistance float64 `json:"max_link_distance"`
}

// ChartResult is the complete extraction output for one chart.
type ChartResult struct {
	Source     string            `json:"source,omitempty"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Timestamp  *Timestamp        `json:"timestamp,omitempty"`
	Systems    []SystemRecord    `json:"systems"`
	Candidates []CandidateRecord `json:"candidates"`
	Parameters Parameters        `json:"detection_parameters"`
}

func newSystemRecord(m *system.Marker) SystemRecord {
	markers := m.Linked
	if markers == nil {
		markers = []utils.Point{}
	}
	return SystemRecord{
		Kind:       m.Kind.String(),
		Pressure:   m.Pressure,
		Center:     m.Center,
		Confidence: m.Confidence,
		Heuristic:  m.Heuristic,
		Markers:    markers,
	}
}

func newCandidateRecord(c *discontinuity.Candidate, linked bool) CandidateRecord {
	return CandidateRecord{
		Center: c.Center,
		Origin: c.Origin.String(),
		Linked: linked,
	}
}

// ToJSON serializes a result with indentation.
func (r *ChartResult) ToJSON() (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CSVHeader is the column list produced by AppendCSV.
var CSVHeader = []string{"day", "month", "hour", "x", "y", "type", "pressure"}

// AppendCSV writes one row per linked discontinuity point to w. Systems
// without linked points contribute no rows.
func (r *ChartResult) AppendCSV(w *csv.Writer) error {
	var day, month, hour string
	if r.Timestamp != nil {
		day, month, hour = r.Timestamp.Day, r.Timestamp.Month, r.Timestamp.Hour
	}
	for _, s := range r.Systems {
		for _, p := range s.Markers {
			row := []string{
				day, month, hour,
				strconv.Itoa(int(p.X)),
				strconv.Itoa(int(p.Y)),
				s.Kind,
				strconv.Itoa(s.Pressure),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToCSV serializes results to a CSV document with a header row.
func ToCSV(results []*ChartResult) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return "", err
	}
	for _, r := range results {
		if err := r.AppendCSV(w); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
