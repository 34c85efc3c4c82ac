package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusExporter implements the Exporter interface for Prometheus.
type PrometheusExporter struct {
	config   *Config
	registry prometheus.Registerer

	// Counters
	hitsTotal          *prometheus.CounterVec
	missesTotal        *prometheus.CounterVec
	invalidationsTotal *prometheus.CounterVec
	teardownsTotal     *prometheus.CounterVec
	evictionsTotal     *prometheus.CounterVec

	// Histograms
	operationDuration *prometheus.HistogramVec

	// Gauges
	ownersCount *prometheus.GaugeVec
	hitRate     *prometheus.GaugeVec

	// Stats counters are cumulative; deltas against the last export keep
	// the Prometheus counters from double-counting.
	mu   sync.Mutex
	last statsSnapshot
}

type statsSnapshot struct {
	hits          int64
	misses        int64
	invalidations int64
	teardowns     int64
	evictions     int64
}

// PrometheusConfig holds Prometheus-specific configuration.
type PrometheusConfig struct {
	// Registry is the Prometheus registry to use (optional, uses the
	// default registerer if nil).
	Registry prometheus.Registerer

	// DurationBuckets for the operation timing histogram.
	DurationBuckets []float64
}

// baseLabels is the label set shared by all standard metrics.
var baseLabels = []string{"engine"}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(config *Config, promConfig *PrometheusConfig) (*PrometheusExporter, error) {
	if config == nil {
		config = NewDefaultConfig()
	}
	if promConfig == nil {
		promConfig = &PrometheusConfig{}
	}

	registry := promConfig.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	durationBuckets := promConfig.DurationBuckets
	if durationBuckets == nil {
		durationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5}
	}

	exporter := &PrometheusExporter{
		config:   config,
		registry: registry,
	}

	if err := exporter.createStandardMetrics(durationBuckets); err != nil {
		return nil, fmt.Errorf("failed to create standard metrics: %w", err)
	}

	return exporter, nil
}

func (p *PrometheusExporter) createStandardMetrics(durationBuckets []float64) error {
	names := p.config.MetricNames

	var err error
	p.hitsTotal, err = p.createCounterVec(names.HitsTotal, "Total number of cache hits", baseLabels)
	if err != nil {
		return err
	}

	p.missesTotal, err = p.createCounterVec(names.MissesTotal, "Total number of cache misses", baseLabels)
	if err != nil {
		return err
	}

	p.invalidationsTotal, err = p.createCounterVec(names.InvalidationsTotal, "Total number of manually invalidated slots", baseLabels)
	if err != nil {
		return err
	}

	p.teardownsTotal, err = p.createCounterVec(names.TeardownsTotal, "Total number of instances cleared through teardown", baseLabels)
	if err != nil {
		return err
	}

	p.evictionsTotal, err = p.createCounterVec(names.EvictionsTotal, "Total number of owner entries evicted by a bounded store", baseLabels)
	if err != nil {
		return err
	}

	if p.config.IncludeDetailedTimings {
		p.operationDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        names.OperationDuration,
				Help:        "Engine operation duration in seconds",
				ConstLabels: prometheus.Labels(p.config.Labels),
				Buckets:     durationBuckets,
			},
			append(append([]string{}, baseLabels...), "operation"),
		)
		if err := p.registry.Register(p.operationDuration); err != nil {
			return fmt.Errorf("failed to register %s: %w", names.OperationDuration, err)
		}
	}

	p.ownersCount, err = p.createGaugeVec(names.OwnersCount, "Current number of instances with live slots", baseLabels)
	if err != nil {
		return err
	}

	p.hitRate, err = p.createGaugeVec(names.HitRate, "Cache hit rate as a percentage", baseLabels)
	if err != nil {
		return err
	}

	return nil
}

// ExportStats exports the current engine statistics to Prometheus.
func (p *PrometheusExporter) ExportStats(stats Stats, labels Labels) error {
	promLabels := p.engineLabel(labels)

	p.mu.Lock()
	current := statsSnapshot{
		hits:          stats.Hits(),
		misses:        stats.Misses(),
		invalidations: stats.Invalidations(),
		teardowns:     stats.Teardowns(),
		evictions:     stats.Evictions(),
	}
	delta := statsSnapshot{
		hits:          current.hits - p.last.hits,
		misses:        current.misses - p.last.misses,
		invalidations: current.invalidations - p.last.invalidations,
		teardowns:     current.teardowns - p.last.teardowns,
		evictions:     current.evictions - p.last.evictions,
	}
	p.last = current
	p.mu.Unlock()

	p.hitsTotal.With(promLabels).Add(float64(delta.hits))
	p.missesTotal.With(promLabels).Add(float64(delta.misses))
	p.invalidationsTotal.With(promLabels).Add(float64(delta.invalidations))
	p.teardownsTotal.With(promLabels).Add(float64(delta.teardowns))
	p.evictionsTotal.With(promLabels).Add(float64(delta.evictions))

	p.ownersCount.With(promLabels).Set(float64(stats.Owners()))
	p.hitRate.With(promLabels).Set(stats.HitRate())

	return nil
}

// RecordOperation records an engine operation with timing.
func (p *PrometheusExporter) RecordOperation(operation Operation, duration time.Duration, labels Labels) error {
	if p.operationDuration == nil {
		return nil
	}

	opLabels := prometheus.Labels{}
	for k, v := range p.engineLabel(labels) {
		opLabels[k] = v
	}
	opLabels["operation"] = string(operation)
	p.operationDuration.With(opLabels).Observe(duration.Seconds())
	return nil
}

// Close shuts down the exporter. Prometheus metrics need no explicit
// cleanup.
func (p *PrometheusExporter) Close() error {
	return nil
}

func (p *PrometheusExporter) engineLabel(labels Labels) prometheus.Labels {
	engine := "default"
	if name, ok := labels["engine"]; ok {
		engine = name
	}
	return prometheus.Labels{"engine": engine}
}

func (p *PrometheusExporter) createCounterVec(name, help string, labelNames []string) (*prometheus.CounterVec, error) {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        name,
			Help:        help,
			ConstLabels: prometheus.Labels(p.config.Labels),
		},
		labelNames,
	)
	if err := p.registry.Register(counter); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", name, err)
	}
	return counter, nil
}

func (p *PrometheusExporter) createGaugeVec(name, help string, labelNames []string) (*prometheus.GaugeVec, error) {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        name,
			Help:        help,
			ConstLabels: prometheus.Labels(p.config.Labels),
		},
		labelNames,
	)
	if err := p.registry.Register(gauge); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", name, err)
	}
	return gauge, nil
}
