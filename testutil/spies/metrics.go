package spies

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MetricKind distinguishes the three recording methods of a MetricsCollector.
type MetricKind string

const (
	KindDuration MetricKind = "duration"
	KindCounter  MetricKind = "counter"
	KindValue    MetricKind = "value"
)

// MetricRecord is one captured call.
type MetricRecord struct {
	Kind     MetricKind
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy captures every metric call. It implements both the plain and the contextual collector.
type MetricsCollectorSpy struct {
	mu      sync.Mutex
	records []MetricRecord
}

func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.add(MetricRecord{Kind: KindDuration, Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(MetricRecord{Kind: KindCounter, Metric: metric, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.add(MetricRecord{Kind: KindValue, Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

func (s *MetricsCollectorSpy) add(record MetricRecord) {
	record.Labels = maps.Clone(record.Labels)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
}

// Records returns a copy of all captured calls.
func (s *MetricsCollectorSpy) Records() []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MetricRecord, len(s.records))
	copy(out, s.records)

	return out
}

// Count returns how many calls of kind were recorded for metric.
func (s *MetricsCollectorSpy) Count(kind MetricKind, metric string) int {
	count := 0

	for _, r := range s.Records() {
		if r.Kind == kind && r.Metric == metric {
			count++
		}
	}

	return count
}

// Reset forgets all captured calls.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}

// HasCounter starts a fluent match on counter records of metric.
func (s *MetricsCollectorSpy) HasCounter(metric string) *MetricMatcher {
	return s.match(KindCounter, metric)
}

// HasDuration starts a fluent match on duration records of metric.
func (s *MetricsCollectorSpy) HasDuration(metric string) *MetricMatcher {
	return s.match(KindDuration, metric)
}

// HasValue starts a fluent match on value records of metric.
func (s *MetricsCollectorSpy) HasValue(metric string) *MetricMatcher {
	return s.match(KindValue, metric)
}

func (s *MetricsCollectorSpy) match(kind MetricKind, metric string) *MetricMatcher {
	var candidates []MetricRecord

	for _, r := range s.Records() {
		if r.Kind == kind && r.Metric == metric {
			candidates = append(candidates, r)
		}
	}

	return &MetricMatcher{candidates: candidates}
}

// MetricMatcher narrows candidate records by label. Assert is true if any record survives.
type MetricMatcher struct {
	candidates []MetricRecord
}

// WithLabel keeps only records carrying key=value.
func (m *MetricMatcher) WithLabel(key, value string) *MetricMatcher {
	var kept []MetricRecord

	for _, r := range m.candidates {
		if v, ok := r.Labels[key]; ok && v == value {
			kept = append(kept, r)
		}
	}

	m.candidates = kept

	return m
}

// WithStatus is WithLabel("status", status).
func (m *MetricMatcher) WithStatus(status string) *MetricMatcher {
	return m.WithLabel("status", status)
}

// Assert reports whether at least one record matched.
func (m *MetricMatcher) Assert() bool {
	return len(m.candidates) > 0
}

// First returns the first matching record.
func (m *MetricMatcher) First() (MetricRecord, bool) {
	if len(m.candidates) == 0 {
		return MetricRecord{}, false
	}

	return m.candidates[0], true
}
