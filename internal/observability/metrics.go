// Package observability holds the Prometheus instrumentation for chart
// processing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the Prometheus counters and histograms for the extraction
// pipeline.
type Metrics struct {
	ChartsProcessed prometheus.Counter
	ChartsFailed    prometheus.Counter

	SystemsDetected    *prometheus.CounterVec // labels: kind={L,H}
	CandidatesDetected *prometheus.CounterVec // labels: origin={shape,component,sensitive,distorted,isolated}
	CandidatesLinked   prometheus.Counter
	RecognizeRetries   prometheus.Counter

	ChartDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ChartsProcessed,
		m.ChartsFailed,
		m.SystemsDetected,
		m.CandidatesDetected,
		m.CandidatesLinked,
		m.RecognizeRetries,
		m.ChartDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// parallel tests do not trip "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Summary holds the counter totals accumulated so far, read back from the
// collectors for end-of-run reporting.
type Summary struct {
	ChartsProcessed    int
	ChartsFailed       int
	SystemsDetected    int
	CandidatesDetected int
	CandidatesLinked   int
	RecognizeRetries   int
}

// Summary reads the current totals from the counters.
func (m *Metrics) Summary() Summary {
	return Summary{
		ChartsProcessed:    int(counterValue(m.ChartsProcessed)),
		ChartsFailed:       int(counterValue(m.ChartsFailed)),
		SystemsDetected:    int(vecTotal(m.SystemsDetected)),
		CandidatesDetected: int(vecTotal(m.CandidatesDetected)),
		CandidatesLinked:   int(counterValue(m.CandidatesLinked)),
		RecognizeRetries:   int(counterValue(m.RecognizeRetries)),
	}
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func vecTotal(vec *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric)
	go func() {
		vec.Collect(ch)
		close(ch)
	}()
	var total float64
	for metric := range ch {
		var m dto.Metric
		if err := metric.Write(&m); err == nil {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func newMetrics() *Metrics {
	return &Metrics{
		ChartsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synospot",
			Name:      "charts_processed_total",
			Help:      "Total charts processed to completion.",
		}),
		ChartsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synospot",
			Name:      "charts_failed_total",
			Help:      "Total charts that failed to process.",
		}),
		SystemsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "synospot",
			Name:      "systems_detected_total",
			Help:      "Pressure systems detected, by kind.",
		}, []string{"kind"}),
		CandidatesDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "synospot",
			Name:      "candidates_detected_total",
			Help:      "Discontinuity candidates detected, by origin strategy.",
		}, []string{"origin"}),
		CandidatesLinked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synospot",
			Name:      "candidates_linked_total",
			Help:      "Discontinuity candidates linked to a pressure system.",
		}),
		RecognizeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synospot",
			Name:      "recognize_retries_total",
			Help:      "Text recognition calls retried after a failure.",
		}),
		ChartDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "synospot",
			Name:      "chart_duration_seconds",
			Help:      "Duration of a complete chart extraction.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		}),
	}
}
