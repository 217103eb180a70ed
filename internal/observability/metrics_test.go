package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPromMetrics(reg)

	m.ModuleCompleted("dropped")
	m.ModuleCompleted("dropped")
	m.ModuleFailed("debug")
	m.SignatureMatched("analysis_errors")
	m.SignatureSkipped("drops_many_files")

	if got := testutil.ToFloat64(m.modulesCompleted.WithLabelValues("dropped")); got != 2 {
		t.Fatalf("expected 2 completed, got %f", got)
	}
	if got := testutil.ToFloat64(m.modulesFailed.WithLabelValues("debug")); got != 1 {
		t.Fatalf("expected 1 failed, got %f", got)
	}
	if got := testutil.ToFloat64(m.signaturesMatched.WithLabelValues("analysis_errors")); got != 1 {
		t.Fatalf("expected 1 matched, got %f", got)
	}
	if got := testutil.ToFloat64(m.signaturesSkipped.WithLabelValues("drops_many_files")); got != 1 {
		t.Fatalf("expected 1 skipped, got %f", got)
	}
}

func TestPromMetricsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPromMetrics(reg)

	m.RunDuration(0.25)

	count := testutil.CollectAndCount(m.runDuration)
	if count != 1 {
		t.Fatalf("expected the histogram to be collectable, got %d series", count)
	}
}

func TestNopMetricsIsSafe(t *testing.T) {
	var m Metrics = NopMetrics{}
	m.ModuleCompleted("x")
	m.ModuleFailed("x")
	m.SignatureMatched("x")
	m.SignatureSkipped("x")
	m.RunDuration(1)
}
