package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics records processing engine activity. The engine only ever calls
// this port; whether anything listens is the caller's concern.
type Metrics interface {
	ModuleCompleted(name string)
	ModuleFailed(name string)
	SignatureMatched(name string)
	SignatureSkipped(name string)
	RunDuration(seconds float64)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ModuleCompleted(string)  {}
func (NopMetrics) ModuleFailed(string)     {}
func (NopMetrics) SignatureMatched(string) {}
func (NopMetrics) SignatureSkipped(string) {}
func (NopMetrics) RunDuration(float64)     {}

// PromMetrics exposes engine activity as prometheus collectors.
type PromMetrics struct {
	modulesCompleted  *prometheus.CounterVec
	modulesFailed     *prometheus.CounterVec
	signaturesMatched *prometheus.CounterVec
	signaturesSkipped *prometheus.CounterVec
	runDuration       prometheus.Histogram
}

// NewPromMetrics builds and registers the engine collectors against reg.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{
		modulesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "processing_modules_completed_total",
			Help: "Processing modules that produced a fragment.",
		}, []string{"module"}),
		modulesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "processing_modules_failed_total",
			Help: "Processing modules that errored and contributed nothing.",
		}, []string{"module"}),
		signaturesMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "processing_signatures_matched_total",
			Help: "Signatures whose evaluation returned a match.",
		}, []string{"signature"}),
		signaturesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "processing_signatures_skipped_total",
			Help: "Signatures skipped by enable or version gates.",
		}, []string{"signature"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "processing_run_duration_seconds",
			Help:    "Wall-clock time of a full processing run.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		m.modulesCompleted,
		m.modulesFailed,
		m.signaturesMatched,
		m.signaturesSkipped,
		m.runDuration,
	)

	return m
}

func (m *PromMetrics) ModuleCompleted(name string) {
	m.modulesCompleted.WithLabelValues(name).Inc()
}

func (m *PromMetrics) ModuleFailed(name string) {
	m.modulesFailed.WithLabelValues(name).Inc()
}

func (m *PromMetrics) SignatureMatched(name string) {
	m.signaturesMatched.WithLabelValues(name).Inc()
}

func (m *PromMetrics) SignatureSkipped(name string) {
	m.signaturesSkipped.WithLabelValues(name).Inc()
}

func (m *PromMetrics) RunDuration(seconds float64) {
	m.runDuration.Observe(seconds)
}
