package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OpenTelemetryExporter implements the Exporter interface for OpenTelemetry.
type OpenTelemetryExporter struct {
	config *Config
	meter  metric.Meter
	ctx    context.Context

	hitsCounter          metric.Int64Counter
	missesCounter        metric.Int64Counter
	invalidationsCounter metric.Int64Counter
	teardownsCounter     metric.Int64Counter
	evictionsCounter     metric.Int64Counter

	operationDuration metric.Float64Histogram

	ownersGauge  metric.Int64Gauge
	hitRateGauge metric.Float64Gauge

	mu   sync.Mutex
	last statsSnapshot
}

// OpenTelemetryConfig holds OpenTelemetry-specific configuration.
type OpenTelemetryConfig struct {
	// Meter is the OpenTelemetry meter to use.
	Meter metric.Meter

	// Context is the context to use for metric operations.
	Context context.Context

	// DefaultAttributes are applied to all metrics.
	DefaultAttributes []attribute.KeyValue
}

// NewOpenTelemetryExporter creates a new OpenTelemetry metrics exporter.
func NewOpenTelemetryExporter(config *Config, otelConfig *OpenTelemetryConfig) (*OpenTelemetryExporter, error) {
	if config == nil {
		config = NewDefaultConfig()
	}
	if otelConfig == nil {
		return nil, fmt.Errorf("OpenTelemetry configuration is required")
	}
	if otelConfig.Meter == nil {
		return nil, fmt.Errorf("OpenTelemetry meter is required")
	}

	ctx := otelConfig.Context
	if ctx == nil {
		ctx = context.Background()
	}

	exporter := &OpenTelemetryExporter{
		config: config,
		meter:  otelConfig.Meter,
		ctx:    ctx,
	}

	if err := exporter.createStandardMetrics(); err != nil {
		return nil, fmt.Errorf("failed to create standard metrics: %w", err)
	}

	return exporter, nil
}

func (o *OpenTelemetryExporter) createStandardMetrics() error {
	names := o.config.MetricNames

	var err error
	o.hitsCounter, err = o.meter.Int64Counter(
		names.HitsTotal,
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create hits counter: %w", err)
	}

	o.missesCounter, err = o.meter.Int64Counter(
		names.MissesTotal,
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create misses counter: %w", err)
	}

	o.invalidationsCounter, err = o.meter.Int64Counter(
		names.InvalidationsTotal,
		metric.WithDescription("Total number of manually invalidated slots"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create invalidations counter: %w", err)
	}

	o.teardownsCounter, err = o.meter.Int64Counter(
		names.TeardownsTotal,
		metric.WithDescription("Total number of instances cleared through teardown"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create teardowns counter: %w", err)
	}

	o.evictionsCounter, err = o.meter.Int64Counter(
		names.EvictionsTotal,
		metric.WithDescription("Total number of owner entries evicted by a bounded store"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create evictions counter: %w", err)
	}

	if o.config.IncludeDetailedTimings {
		o.operationDuration, err = o.meter.Float64Histogram(
			names.OperationDuration,
			metric.WithDescription("Engine operation duration"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return fmt.Errorf("failed to create operation duration histogram: %w", err)
		}
	}

	o.ownersGauge, err = o.meter.Int64Gauge(
		names.OwnersCount,
		metric.WithDescription("Current number of instances with live slots"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create owners gauge: %w", err)
	}

	o.hitRateGauge, err = o.meter.Float64Gauge(
		names.HitRate,
		metric.WithDescription("Cache hit rate as a percentage"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return fmt.Errorf("failed to create hit rate gauge: %w", err)
	}

	return nil
}

// ExportStats exports the current engine statistics.
func (o *OpenTelemetryExporter) ExportStats(stats Stats, labels Labels) error {
	attrs := o.convertLabels(labels)

	o.mu.Lock()
	current := statsSnapshot{
		hits:          stats.Hits(),
		misses:        stats.Misses(),
		invalidations: stats.Invalidations(),
		teardowns:     stats.Teardowns(),
		evictions:     stats.Evictions(),
	}
	delta := statsSnapshot{
		hits:          current.hits - o.last.hits,
		misses:        current.misses - o.last.misses,
		invalidations: current.invalidations - o.last.invalidations,
		teardowns:     current.teardowns - o.last.teardowns,
		evictions:     current.evictions - o.last.evictions,
	}
	o.last = current
	o.mu.Unlock()

	o.hitsCounter.Add(o.ctx, delta.hits, metric.WithAttributes(attrs...))
	o.missesCounter.Add(o.ctx, delta.misses, metric.WithAttributes(attrs...))
	o.invalidationsCounter.Add(o.ctx, delta.invalidations, metric.WithAttributes(attrs...))
	o.teardownsCounter.Add(o.ctx, delta.teardowns, metric.WithAttributes(attrs...))
	o.evictionsCounter.Add(o.ctx, delta.evictions, metric.WithAttributes(attrs...))

	o.ownersGauge.Record(o.ctx, stats.Owners(), metric.WithAttributes(attrs...))
	o.hitRateGauge.Record(o.ctx, stats.HitRate(), metric.WithAttributes(attrs...))

	return nil
}

// RecordOperation records an engine operation with timing.
func (o *OpenTelemetryExporter) RecordOperation(operation Operation, duration time.Duration, labels Labels) error {
	if o.operationDuration == nil {
		return nil
	}

	attrs := o.convertLabels(labels)
	opAttrs := make([]attribute.KeyValue, len(attrs)+1)
	copy(opAttrs, attrs)
	opAttrs[len(attrs)] = attribute.String("operation", string(operation))

	o.operationDuration.Record(o.ctx, duration.Seconds(), metric.WithAttributes(opAttrs...))
	return nil
}

// Close shuts down the exporter. OpenTelemetry metrics need no explicit
// cleanup.
func (o *OpenTelemetryExporter) Close() error {
	return nil
}

func (o *OpenTelemetryExporter) convertLabels(labels Labels) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels)+len(o.config.Labels))
	for k, v := range o.config.Labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
