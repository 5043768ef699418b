// Package tracing records lightweight span trees through Go contexts and
// writes finished traces to slog. Spans form parent–child trees; only the
// root is logged, with its children nested beneath it.
package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
)

type contextKey string

const spanKey contextKey = "trace_span"

// Span represents a timed operation within a trace.
type Span struct {
	Name      string
	TraceID   string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Children  []*Span
	Attrs     map[string]any
	mu        sync.Mutex
}

// Tracer decides which requests are traced.
type Tracer struct {
	enabled    bool
	sampleRate float64
	logger     *slog.Logger
}

// NewTracer builds a tracer from cfg. A disabled tracer hands out spans
// that are never logged.
func NewTracer(cfg config.TracingConfig) *Tracer {
	return &Tracer{
		enabled:    cfg.Enabled,
		sampleRate: cfg.SampleRate,
		logger:     slog.Default().With("component", "tracing"),
	}
}

// Start opens a root span when the request is sampled, or a child span
// when ctx already carries one. finish ends the span and, for a sampled
// root, logs the tree.
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, *Span, func()) {
	if parent := SpanFromContext(ctx); parent != nil {
		ctx, span := StartChildSpan(ctx, name)
		return ctx, span, span.End
	}
	if t == nil || !t.enabled || mathrand.Float64() >= t.sampleRate {
		span := newSpan(name, "")
		return ctx, span, span.End
	}
	ctx, span := StartSpan(ctx, name, NewTraceID())
	return ctx, span, func() {
		span.End()
		span.logTo(t.logger, 0)
	}
}

// NewTraceID returns 32 random hex characters.
func NewTraceID() string {
	var b [16]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func newSpan(name, traceID string) *Span {
	return &Span{
		Name:      name,
		TraceID:   traceID,
		StartTime: time.Now(),
		Children:  make([]*Span, 0),
		Attrs:     make(map[string]any),
	}
}

// StartSpan creates a new root span and stores it in the returned context.
func StartSpan(ctx context.Context, name string, traceID string) (context.Context, *Span) {
	span := newSpan(name, traceID)
	return context.WithValue(ctx, spanKey, span), span
}

// StartChildSpan creates a child span linked to the parent in ctx.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	child := newSpan(name, "")

	if parent != nil {
		child.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.Children = append(parent.Children, child)
		parent.mu.Unlock()
	}

	return context.WithValue(ctx, spanKey, child), child
}

// End records the span's end time and duration.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// SetAttr attaches a key-value attribute to the span.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// SpanFromContext extracts the current Span from ctx, or nil if none.
func SpanFromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

// Log writes the span tree to the default logger.
func (s *Span) Log() {
	s.logTo(slog.Default(), 0)
}

func (s *Span) logTo(logger *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := []any{
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_ms", float64(s.Duration.Microseconds()) / 1000,
		"depth", depth,
	}
	for k, v := range s.Attrs {
		attrs = append(attrs, k, v)
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()

	logger.Info("span", attrs...)
	for _, child := range children {
		child.logTo(logger, depth+1)
	}
}
