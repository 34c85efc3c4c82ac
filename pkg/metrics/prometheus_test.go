package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestPrometheusExporter(t *testing.T, config *Config) *PrometheusExporter {
	t.Helper()

	exporter, err := NewPrometheusExporter(config, &PrometheusConfig{
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}
	return exporter
}

func TestPrometheusExportStats(t *testing.T) {
	exporter := newTestPrometheusExporter(t, nil)

	stats := &stubStats{hits: 10, misses: 5, invalidations: 2, owners: 3}
	if err := exporter.ExportStats(stats, Labels{"engine": "orders"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := testutil.ToFloat64(exporter.hitsTotal.WithLabelValues("orders")); got != 10 {
		t.Fatalf("Expected 10 hits, got %g", got)
	}
	if got := testutil.ToFloat64(exporter.missesTotal.WithLabelValues("orders")); got != 5 {
		t.Fatalf("Expected 5 misses, got %g", got)
	}
	if got := testutil.ToFloat64(exporter.ownersCount.WithLabelValues("orders")); got != 3 {
		t.Fatalf("Expected 3 owners, got %g", got)
	}
}

func TestPrometheusExportStatsDeltas(t *testing.T) {
	exporter := newTestPrometheusExporter(t, nil)

	stats := &stubStats{hits: 10, misses: 4}
	if err := exporter.ExportStats(stats, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Engine stats are cumulative; a second export with grown counters
	// must add only the growth.
	stats.hits = 15
	stats.misses = 4
	if err := exporter.ExportStats(stats, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := testutil.ToFloat64(exporter.hitsTotal.WithLabelValues("default")); got != 15 {
		t.Fatalf("Expected counter at 15, got %g", got)
	}
	if got := testutil.ToFloat64(exporter.missesTotal.WithLabelValues("default")); got != 4 {
		t.Fatalf("Expected counter at 4, got %g", got)
	}
}

func TestPrometheusRecordOperation(t *testing.T) {
	config := NewDefaultConfig().WithDetailedTimings(true)
	exporter := newTestPrometheusExporter(t, config)

	if err := exporter.RecordOperation(OperationCall, 5*time.Millisecond, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := exporter.RecordOperation(OperationTeardown, time.Millisecond, Labels{"engine": "orders"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	count := testutil.CollectAndCount(exporter.operationDuration)
	if count != 2 {
		t.Fatalf("Expected 2 timing series, got %d", count)
	}
}

func TestPrometheusRecordOperationWithoutTimings(t *testing.T) {
	exporter := newTestPrometheusExporter(t, nil)

	// Timings disabled: recording is a no-op, not an error.
	if err := exporter.RecordOperation(OperationCall, time.Millisecond, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestPrometheusDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	if _, err := NewPrometheusExporter(nil, &PrometheusConfig{Registry: registry}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := NewPrometheusExporter(nil, &PrometheusConfig{Registry: registry}); err == nil {
		t.Fatal("Expected duplicate registration to fail")
	}
}
