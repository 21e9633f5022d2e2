package spies

import (
	"context"
	"maps"
	"sync"

	"github.com/equiprent/reservation-engine/reservation"
)

// SpanSpy is a span handed out by TracingCollectorSpy.
type SpanSpy struct {
	mu         sync.Mutex
	status     string
	attributes map[string]string
}

func (c *SpanSpy) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

func (c *SpanSpy) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = map[string]string{}
	}

	c.attributes[key] = value
}

// SpanRecord is one started span, completed with status and end attributes once finished.
type SpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
	span            *SpanSpy
}

// TracingCollectorSpy records started and finished spans.
type TracingCollectorSpy struct {
	mu      sync.Mutex
	records []SpanRecord
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, reservation.SpanContext) {
	span := &SpanSpy{}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpanRecord{Name: name, StartAttributes: maps.Clone(attrs), span: span})

	return ctx, span
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx reservation.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpanSpy)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].span == span {
			s.records[i].Status = status
			s.records[i].EndAttributes = maps.Clone(attrs)
			s.records[i].Finished = true

			return
		}
	}
}

// Spans returns a copy of all recorded spans.
func (s *TracingCollectorSpy) Spans() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SpanRecord, len(s.records))
	copy(out, s.records)

	return out
}

// FinishedSpan returns the first finished span named name.
func (s *TracingCollectorSpy) FinishedSpan(name string) (SpanRecord, bool) {
	for _, r := range s.Spans() {
		if r.Name == name && r.Finished {
			return r, true
		}
	}

	return SpanRecord{}, false
}
