// Package pipeline wires the detection stages into a chart annotation
// extractor: locate pressure readings, classify their systems, find
// discontinuity glyphs and link them to the nearest system.
package pipeline

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/synospot/synospot/internal/associate"
	"github.com/synospot/synospot/internal/discontinuity"
	"github.com/synospot/synospot/internal/header"
	"github.com/synospot/synospot/internal/observability"
	"github.com/synospot/synospot/internal/pressure"
	"github.com/synospot/synospot/internal/recognize"
	"github.com/synospot/synospot/internal/system"
)

// MaskConfig holds the binarization geometry shared by all stages.
type MaskConfig struct {
	// Threshold is the gray cutoff for the standard working mask.
	Threshold uint8
	// ScanThreshold is the looser cutoff for the grid-scan mask.
	ScanThreshold uint8
	// HeaderHeightFrac and HeaderWidthFrac bound the reserved top-left
	// metadata rectangle cleared from every mask.
	HeaderHeightFrac float64
	HeaderWidthFrac  float64
}

// Config holds configuration for the pipeline and its stages.
type Config struct {
	Tesseract     recognize.TesseractConfig
	RetryDelay    time.Duration
	Mask          MaskConfig
	Pressure      pressure.Config
	System        system.Config
	Discontinuity discontinuity.Config
	Associate     associate.Config
	Header        header.Config
}

// DefaultConfig returns a pipeline config with stage defaults.
func DefaultConfig() Config {
	return Config{
		Tesseract:  recognize.DefaultTesseractConfig(),
		RetryDelay: recognize.DefaultRetryDelay,
		Mask: MaskConfig{
			Threshold:        120,
			ScanThreshold:    100,
			HeaderHeightFrac: 0.11,
			HeaderWidthFrac:  0.38,
		},
		Pressure:      pressure.DefaultConfig(),
		System:        system.DefaultConfig(),
		Discontinuity: discontinuity.DefaultConfig(),
		Associate:     associate.DefaultConfig(),
		Header:        header.DefaultConfig(),
	}
}

// Pipeline runs the extraction stages over charts.
type Pipeline struct {
	cfg        Config
	svc        recognize.Service
	locator    *pressure.Locator
	classifier *system.Classifier
	detector   *discontinuity.Detector
	extractor  *header.Extractor
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg     Config
	svc     recognize.Service
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLanguage sets the recognition language.
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.Tesseract.Language = lang
	}
	return b
}

// WithRetryDelay sets the recognition retry backoff.
func (b *Builder) WithRetryDelay(d time.Duration) *Builder {
	if d > 0 {
		b.cfg.RetryDelay = d
	}
	return b
}

// WithMaskThresholds sets the standard and scan binarization cutoffs.
func (b *Builder) WithMaskThresholds(standard, scan uint8) *Builder {
	if standard > 0 {
		b.cfg.Mask.Threshold = standard
	}
	if scan > 0 {
		b.cfg.Mask.ScanThreshold = scan
	}
	return b
}

// WithMaxLinkDistance sets the association cutoff in px.
func (b *Builder) WithMaxLinkDistance(d float64) *Builder {
	if d > 0 {
		b.cfg.Associate.MaxDistance = d
	}
	return b
}

// WithRecognizer injects a recognition service, replacing the Tesseract
// backend. The pipeline takes ownership and closes it.
func (b *Builder) WithRecognizer(svc recognize.Service) *Builder {
	b.svc = svc
	return b
}

// WithMetrics injects pipeline metrics.
func (b *Builder) WithMetrics(m *observability.Metrics) *Builder {
	b.metrics = m
	return b
}

// WithClock injects the clock used for retry backoff.
func (b *Builder) WithClock(c clockwork.Clock) *Builder {
	b.clock = c
	return b
}

// Build assembles the pipeline stages.
func (b *Builder) Build() (*Pipeline, error) {
	metrics := b.metrics
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	clock := b.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	// The mask section is the single source for thresholds and header
	// geometry shared across stages.
	cfg := b.cfg
	cfg.Pressure.HeaderHeightFrac = cfg.Mask.HeaderHeightFrac
	cfg.Pressure.HeaderWidthFrac = cfg.Mask.HeaderWidthFrac
	cfg.System.BinarizeThreshold = cfg.Mask.Threshold
	cfg.Discontinuity.SensitiveThreshold = cfg.Mask.ScanThreshold
	cfg.Discontinuity.HeaderHeightFrac = cfg.Mask.HeaderHeightFrac
	cfg.Discontinuity.HeaderWidthFrac = cfg.Mask.HeaderWidthFrac

	svc := b.svc
	if svc == nil {
		t, err := recognize.NewTesseract(cfg.Tesseract)
		if err != nil {
			return nil, err
		}
		svc = t
	}
	svc = recognize.WithRetry(svc, clock, cfg.RetryDelay, func() {
		metrics.RecognizeRetries.Inc()
	})

	return &Pipeline{
		cfg:        cfg,
		svc:        svc,
		locator:    pressure.NewLocator(svc, cfg.Pressure),
		classifier: system.NewClassifier(svc, cfg.System),
		detector:   discontinuity.NewDetector(cfg.Discontinuity),
		extractor:  header.NewExtractor(svc, cfg.Header),
		metrics:    metrics,
		clock:      clock,
	}, nil
}

// Config returns the effective pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Close releases the recognition backend.
func (p *Pipeline) Close() error {
	return p.svc.Close()
}
