// Package metrics defines the exporter abstraction used to publish engine
// statistics to observability systems, with Prometheus and OpenTelemetry
// implementations.
package metrics

import (
	"time"
)

// Exporter defines the interface for engine metrics exporters.
type Exporter interface {
	// ExportStats exports the current engine statistics.
	ExportStats(stats Stats, labels Labels) error

	// RecordOperation records an individual engine operation with timing.
	RecordOperation(operation Operation, duration time.Duration, labels Labels) error

	// Close shuts down the exporter and flushes any pending metrics.
	Close() error
}

// Labels represents key-value pairs for metric labels/tags.
type Labels map[string]string

// Stats defines the engine statistics that can be exported. This allows
// the metrics package to work with any stats implementation.
type Stats interface {
	Hits() int64
	Misses() int64
	Invalidations() int64
	Teardowns() int64
	Evictions() int64
	Owners() int64
	HitRate() float64
}

// Operation represents engine operations for metrics.
type Operation string

const (
	OperationCall     Operation = "call"
	OperationClear    Operation = "clear"
	OperationTeardown Operation = "teardown"
)

// MetricNames defines the metric names used across exporters.
type MetricNames struct {
	// Counters
	HitsTotal          string
	MissesTotal        string
	InvalidationsTotal string
	TeardownsTotal     string
	EvictionsTotal     string

	// Histograms
	OperationDuration string

	// Gauges
	OwnersCount string
	HitRate     string
}

// DefaultMetricNames returns the default metric names with proper
// namespacing.
func DefaultMetricNames() MetricNames {
	return MetricNames{
		HitsTotal:          "memo_hits_total",
		MissesTotal:        "memo_misses_total",
		InvalidationsTotal: "memo_invalidations_total",
		TeardownsTotal:     "memo_teardowns_total",
		EvictionsTotal:     "memo_evictions_total",
		OperationDuration:  "memo_operation_duration_seconds",
		OwnersCount:        "memo_owners",
		HitRate:            "memo_hit_rate",
	}
}

// Config holds configuration shared by metrics exporters.
type Config struct {
	// Labels are default labels applied to all metrics.
	Labels Labels

	// MetricNames allows customizing metric names.
	MetricNames MetricNames

	// IncludeDetailedTimings enables per-operation timing histograms.
	IncludeDetailedTimings bool
}

// NewDefaultConfig creates a default metrics configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Labels:                 make(Labels),
		MetricNames:            DefaultMetricNames(),
		IncludeDetailedTimings: false,
	}
}

// WithLabels adds default labels to all metrics.
func (c *Config) WithLabels(labels Labels) *Config {
	for k, v := range labels {
		c.Labels[k] = v
	}
	return c
}

// WithDetailedTimings enables per-operation timing histograms.
func (c *Config) WithDetailedTimings(enabled bool) *Config {
	c.IncludeDetailedTimings = enabled
	return c
}

// NoOpExporter discards all metrics. It is used when metrics are disabled.
type NoOpExporter struct{}

// NewNoOpExporter creates an exporter that discards all metrics.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (n *NoOpExporter) ExportStats(Stats, Labels) error {
	return nil
}

func (n *NoOpExporter) RecordOperation(Operation, time.Duration, Labels) error {
	return nil
}

func (n *NoOpExporter) Close() error {
	return nil
}

// MultiExporter fans out to multiple exporters.
type MultiExporter struct {
	exporters []Exporter
}

// NewMultiExporter creates an exporter that writes to multiple backends.
func NewMultiExporter(exporters ...Exporter) *MultiExporter {
	return &MultiExporter{exporters: exporters}
}

// ExportStats exports to all configured exporters.
func (m *MultiExporter) ExportStats(stats Stats, labels Labels) error {
	for _, exporter := range m.exporters {
		if err := exporter.ExportStats(stats, labels); err != nil {
			return err
		}
	}
	return nil
}

// RecordOperation records to all configured exporters.
func (m *MultiExporter) RecordOperation(operation Operation, duration time.Duration, labels Labels) error {
	for _, exporter := range m.exporters {
		if err := exporter.RecordOperation(operation, duration, labels); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all configured exporters, returning the first error.
func (m *MultiExporter) Close() error {
	var firstErr error
	for _, exporter := range m.exporters {
		if err := exporter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
