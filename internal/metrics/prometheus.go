package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the terminal's Prometheus collectors.
type Recorder struct {
	outcomes       *prometheus.CounterVec
	signals        *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	lastSignals    prometheus.Gauge
	sinkErrors     *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer to expose them on /metrics.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intraday_scan_outcomes_total",
				Help: "Per-symbol scan outcomes by status and reason",
			},
			[]string{"status", "reason"},
		),
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intraday_signals_total",
				Help: "Exhaustion signals emitted by direction",
			},
			[]string{"direction"},
		),
		providerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intraday_provider_errors_total",
				Help: "Market data fetch failures by source",
			},
			[]string{"source"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intraday_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		lastSignals: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "intraday_last_scan_signals",
				Help: "Number of signals in the most recent scan",
			},
		),
		sinkErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intraday_sink_errors_total",
				Help: "Signal sink publish failures by sink",
			},
			[]string{"sink"},
		),
	}
}

func (r *Recorder) RecordOutcome(status, reason string) {
	r.outcomes.WithLabelValues(status, reason).Inc()
}

func (r *Recorder) RecordSignal(direction string) {
	r.signals.WithLabelValues(direction).Inc()
}

func (r *Recorder) RecordProviderError(source string) {
	r.providerErrors.WithLabelValues(source).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) SetLastScanSignals(n int) {
	r.lastSignals.Set(float64(n))
}

func (r *Recorder) RecordSinkError(sink string) {
	r.sinkErrors.WithLabelValues(sink).Inc()
}
