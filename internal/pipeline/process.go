package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/synospot/synospot/internal/associate"
	"github.com/synospot/synospot/internal/binimg"
	"github.com/synospot/synospot/internal/common"
	"github.com/synospot/synospot/internal/discontinuity"
	"github.com/synospot/synospot/internal/header"
	"github.com/synospot/synospot/internal/system"
	"github.com/synospot/synospot/internal/utils"
)

// ProcessImage runs the full extraction over one chart image.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image) (*ChartResult, error) {
	start := p.clock.Now()
	bounds := img.Bounds()

	masked := p.maskHeader(img)
	mask := binimg.FromImage(masked, p.cfg.Mask.Threshold)
	scanMask := binimg.FromImage(masked, p.cfg.Mask.ScanThreshold)

	locate := common.NewTimer(p.clock, "locate")
	readings, err := p.locator.Locate(ctx, masked)
	if err != nil {
		p.metrics.ChartsFailed.Inc()
		return nil, fmt.Errorf("locating pressure readings: %w", err)
	}
	slog.Debug("stage complete", "stage", locate.Name(), "duration", locate.Stop(), "readings", len(readings))

	classify := common.NewTimer(p.clock, "classify")
	markers, err := p.classifier.Classify(ctx, masked, readings)
	if err != nil {
		p.metrics.ChartsFailed.Inc()
		return nil, fmt.Errorf("classifying systems: %w", err)
	}
	slog.Debug("stage complete", "stage", classify.Name(), "duration", classify.Stop(), "systems", len(markers))

	detect := common.NewTimer(p.clock, "detect")
	cands := p.detector.Detect(mask, scanMask)
	merged := discontinuity.Consolidate(cands, discontinuity.ConsolidateRadius)

	quads := make([]utils.Quad, 0, len(markers))
	boxes := make([]utils.Box, 0, len(markers))
	for _, m := range markers {
		quads = append(quads, m.PressureQuad)
		boxes = append(boxes, m.Window)
	}
	valid := discontinuity.FilterContained(merged, quads, boxes, discontinuity.ContainmentMargin)
	slog.Debug("stage complete", "stage", detect.Name(), "duration", detect.Stop(), "candidates", len(valid))

	links := associate.Associate(valid, markers, p.cfg.Associate)

	// The timestamp is read from the unmasked image; the header holds it.
	ct, err := p.extractor.Extract(ctx, img)
	if err != nil {
		p.metrics.ChartsFailed.Inc()
		return nil, fmt.Errorf("extracting timestamp: %w", err)
	}

	result := p.buildResult(bounds, ct, markers, valid, links)
	p.observe(result, start)
	return result, nil
}

// ProcessFile loads and processes one chart, falling back to the filename
// for the timestamp when the header is illegible.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*ChartResult, error) {
	img, err := utils.LoadImage(path)
	if err != nil {
		p.metrics.ChartsFailed.Inc()
		return nil, err
	}
	result, err := p.ProcessImage(ctx, img)
	if err != nil {
		return nil, err
	}
	result.Source = path
	if result.Timestamp == nil {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if ct, err := header.ParseFilename(stem); err == nil {
			result.Timestamp = newTimestamp(&ct)
		} else {
			slog.Warn("no timestamp for chart", "path", path)
		}
	}
	return result, nil
}

// ProcessBatch processes charts independently: one failing chart is logged
// and skipped, and the rest still produce results. Only context
// cancellation aborts the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, paths []string) ([]*ChartResult, error) {
	results := make([]*ChartResult, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		result, err := p.ProcessFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			slog.Error("chart processing failed", "path", path, "error", err)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// buildResult assembles the result document from the stage outputs.
func (p *Pipeline) buildResult(bounds image.Rectangle, ct *header.ChartTime,
	markers []*system.Marker, cands []*discontinuity.Candidate, links []associate.Link,
) *ChartResult {
	linked := make(map[*discontinuity.Candidate]bool, len(links))
	for _, l := range links {
		linked[l.Candidate] = true
	}

	result := &ChartResult{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Timestamp:  newTimestamp(ct),
		Systems:    make([]SystemRecord, 0, len(markers)),
		Candidates: make([]CandidateRecord, 0, len(cands)),
		Parameters: Parameters{
			GlyphOffset:     p.cfg.System.GlyphOffset,
			MaxLinkDistance: p.cfg.Associate.MaxDistance,
		},
	}
	for _, m := range markers {
		result.Systems = append(result.Systems, newSystemRecord(m))
	}
	for _, c := range cands {
		result.Candidates = append(result.Candidates, newCandidateRecord(c, linked[c]))
	}
	return result
}

// observe records per-chart metrics.
func (p *Pipeline) observe(result *ChartResult, start time.Time) {
	p.metrics.ChartsProcessed.Inc()
	p.metrics.ChartDuration.Observe(p.clock.Since(start).Seconds())
	for _, s := range result.Systems {
		p.metrics.SystemsDetected.WithLabelValues(s.Kind).Inc()
		if len(s.Markers) > 0 {
			p.metrics.CandidatesLinked.Add(float64(len(s.Markers)))
		}
	}
	for _, c := range result.Candidates {
		p.metrics.CandidatesDetected.WithLabelValues(c.Origin).Inc()
	}
}

// maskHeader returns a copy of img with the reserved top-left rectangle
// painted background black, so no detection stage sees metadata text.
func (p *Pipeline) maskHeader(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	headerRect := image.Rect(
		bounds.Min.X,
		bounds.Min.Y,
		bounds.Min.X+int(float64(bounds.Dx())*p.cfg.Mask.HeaderWidthFrac),
		bounds.Min.Y+int(float64(bounds.Dy())*p.cfg.Mask.HeaderHeightFrac),
	)
	draw.Draw(out, headerRect, &image.Uniform{color.Black}, image.Point{}, draw.Src)
	return out
}
