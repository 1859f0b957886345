// Package tracetest provides an in-memory trace.TracerProvider that records
// the spans started through it, for asserting on instrumentation in tests.
package tracetest

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Recorder is a TracerProvider whose tracers keep every span they start.
type Recorder struct {
	noop.TracerProvider

	mu    sync.Mutex
	spans []*Span
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Tracer implements trace.TracerProvider. Every name records into r.
func (r *Recorder) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return tracer{r: r}
}

type tracer struct {
	noop.Tracer
	r *Recorder
}

// Start implements trace.Tracer.
func (t tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r := t.r
	cfg := trace.NewSpanStartConfig(opts...)
	s := &Span{Name: name}
	for _, kv := range cfg.Attributes() {
		s.setAttribute(kv)
	}
	r.mu.Lock()
	r.spans = append(r.spans, s)
	r.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

// Spans returns the spans started so far, in start order.
func (r *Recorder) Spans() []*Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Span(nil), r.spans...)
}

// Named returns the recorded spans called name.
func (r *Recorder) Named(name string) []*Span {
	var out []*Span
	for _, s := range r.Spans() {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Reset forgets every recorded span.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.spans = nil
	r.mu.Unlock()
}

// Span is a recorded span.
type Span struct {
	noop.Span

	Name       string
	Attributes map[string]attribute.Value
	Errors     []error
	StatusCode codes.Code
	StatusDesc string
	Ended      bool
}

// Attr returns the string form of the attribute key, or "" when unset.
func (s *Span) Attr(key string) string {
	v, ok := s.Attributes[key]
	if !ok {
		return ""
	}
	return v.Emit()
}

func (s *Span) setAttribute(kv attribute.KeyValue) {
	if s.Attributes == nil {
		s.Attributes = make(map[string]attribute.Value)
	}
	s.Attributes[string(kv.Key)] = kv.Value
}

// IsRecording implements trace.Span.
func (s *Span) IsRecording() bool { return !s.Ended }

// SetAttributes implements trace.Span.
func (s *Span) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.setAttribute(a)
	}
}

// RecordError implements trace.Span.
func (s *Span) RecordError(err error, _ ...trace.EventOption) {
	s.Errors = append(s.Errors, err)
}

// SetStatus implements trace.Span.
func (s *Span) SetStatus(code codes.Code, desc string) {
	s.StatusCode = code
	s.StatusDesc = desc
}

// SetName implements trace.Span.
func (s *Span) SetName(name string) { s.Name = name }

// End implements trace.Span.
func (s *Span) End(...trace.SpanEndOption) { s.Ended = true }
