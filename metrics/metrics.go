package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "elb_access_log"

// object outcome labels
const (
	ObjectCollected = "collected"
	ObjectSkipped   = "skipped"
	ObjectDuplicate = "duplicate"
	ObjectFailed    = "failed"
)

// cycle result labels
const (
	CycleOK      = "ok"
	CycleError   = "error"
	CycleSkipped = "skipped"
)

// line outcome labels
const (
	LineSampledOut = "sampled_out"
	LineTooLong    = "too_long"
	LineParseError = "parse_error"
	LineBadTime    = "bad_timestamp"
	LineFiltered   = "filtered"
	LineEmitted    = "emitted"
)

// CollectorMetrics holds the Prometheus metrics for the collection cycle
type CollectorMetrics struct {
	Registry *prometheus.Registry

	CyclesTotal     *prometheus.CounterVec
	ObjectsListed   prometheus.Counter
	ObjectsTotal    *prometheus.CounterVec
	LinesTotal      *prometheus.CounterVec
	ListErrorsTotal prometheus.Counter
	Watermark       prometheus.Gauge
	HistoryLength   prometheus.Gauge
	CycleDuration   prometheus.Histogram
}

// NewCollectorMetrics registers the metrics on a new registry
func NewCollectorMetrics() *CollectorMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &CollectorMetrics{
		Registry: reg,
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "cycles_total",
			Help:      "Total number of collection cycles by result.",
		}, []string{"result"}),
		ObjectsListed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "objects_listed_total",
			Help:      "Total number of object keys listed.",
		}),
		ObjectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "objects_total",
			Help:      "Total number of candidate objects by outcome.",
		}, []string{"outcome"}),
		LinesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "lines_total",
			Help:      "Total number of log lines by outcome.",
		}, []string{"outcome"}),
		ListErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "list_errors_total",
			Help:      "Total number of failed prefix listings.",
		}),
		Watermark: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "watermark_timestamp_seconds",
			Help:      "Current watermark as a unix timestamp.",
		}),
		HistoryLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "history_length",
			Help:      "Number of object keys in the history.",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of collection cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *CollectorMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *CollectorMetrics) Object(outcome string) {
	if m == nil {
		return
	}
	m.ObjectsTotal.WithLabelValues(outcome).Inc()
}

func (m *CollectorMetrics) Line(outcome string) {
	if m == nil {
		return
	}
	m.LinesTotal.WithLabelValues(outcome).Inc()
}

func (m *CollectorMetrics) Listed() {
	if m == nil {
		return
	}
	m.ObjectsListed.Inc()
}

func (m *CollectorMetrics) ListError() {
	if m == nil {
		return
	}
	m.ListErrorsTotal.Inc()
}

func (m *CollectorMetrics) Cycle(result string, seconds float64) {
	if m == nil {
		return
	}
	m.CyclesTotal.WithLabelValues(result).Inc()
	if result != CycleSkipped {
		m.CycleDuration.Observe(seconds)
	}
}

func (m *CollectorMetrics) State(watermarkUnix float64, historyLength int) {
	if m == nil {
		return
	}
	m.Watermark.Set(watermarkUnix)
	m.HistoryLength.Set(float64(historyLength))
}
