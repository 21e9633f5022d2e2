// Package promadapters implements reservation.MetricsCollector on the Prometheus client library.
package promadapters

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/equiprent/reservation-engine/reservation"
)

var _ reservation.MetricsCollector = (*MetricsCollector)(nil)

// DefaultDurationBuckets span 1ms to roughly 8s.
var DefaultDurationBuckets = prometheus.ExponentialBuckets(0.001, 2, 14)

// MetricsCollector registers one vector per metric name on first use. The label names are
// taken from that first call; later calls with a different label set are dropped, since
// Prometheus requires a fixed label set per metric.
type MetricsCollector struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	dropped    prometheus.Counter
}

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithNamespace prefixes every metric name.
func WithNamespace(namespace string) Option {
	return func(m *MetricsCollector) {
		m.namespace = namespace
	}
}

// WithDurationBuckets replaces DefaultDurationBuckets.
func WithDurationBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) {
		m.buckets = buckets
	}
}

// NewMetricsCollector creates a MetricsCollector registering on registerer,
// e.g. prometheus.DefaultRegisterer or a dedicated prometheus.NewRegistry().
func NewMetricsCollector(registerer prometheus.Registerer, options ...Option) *MetricsCollector {
	m := &MetricsCollector{
		registerer: registerer,
		buckets:    DefaultDurationBuckets,
		histograms: map[string]*prometheus.HistogramVec{},
		counters:   map[string]*prometheus.CounterVec{},
		gauges:     map[string]*prometheus.GaugeVec{},
	}

	for _, option := range options {
		option(m)
	}

	m.dropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "metrics_dropped_total",
		Help:      "Measurements dropped because their labels did not match the metric's label set",
	})
	m.dropped = register(m.registerer, m.dropped)

	return m
}

func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	vec, ok := m.histograms[metric]
	if !ok {
		vec = register(m.registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      metric,
			Help:      help(metric),
			Buckets:   m.buckets,
		}, labelNames(labels)))
		m.histograms[metric] = vec
	}
	m.mu.Unlock()

	observer, err := vec.GetMetricWith(labels)
	if err != nil {
		m.dropped.Inc()
		return
	}

	observer.Observe(duration.Seconds())
}

func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	vec, ok := m.counters[metric]
	if !ok {
		vec = register(m.registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      metric,
			Help:      help(metric),
		}, labelNames(labels)))
		m.counters[metric] = vec
	}
	m.mu.Unlock()

	counter, err := vec.GetMetricWith(labels)
	if err != nil {
		m.dropped.Inc()
		return
	}

	counter.Inc()
}

func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	vec, ok := m.gauges[metric]
	if !ok {
		vec = register(m.registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      metric,
			Help:      help(metric),
		}, labelNames(labels)))
		m.gauges[metric] = vec
	}
	m.mu.Unlock()

	gauge, err := vec.GetMetricWith(labels)
	if err != nil {
		m.dropped.Inc()
		return
	}

	gauge.Set(value)
}

// register registers c, or returns the collector already registered under the same descriptor.
func register[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}

	return c
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func help(metric string) string {
	return strings.ReplaceAll(metric, "_", " ")
}
