package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
)

func TestChildSpansShareTraceID(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "analyze", "trace-1")
	_, child := StartChildSpan(ctx, "process")
	child.End()
	root.End()

	if child.TraceID != "trace-1" {
		t.Errorf("child trace id = %q", child.TraceID)
	}
	if len(root.Children) != 1 || root.Children[0] != child {
		t.Errorf("root children = %v", root.Children)
	}
}

func TestTracerLogsSampledRoot(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracer(config.TracingConfig{Enabled: true, SampleRate: 1})
	tr.logger = slog.New(slog.NewTextHandler(&buf, nil))

	ctx, span, finish := tr.Start(context.Background(), "analyze")
	span.SetAttr("document_id", "d1")
	_, _, finishChild := tr.Start(ctx, "persist")
	finishChild()
	finish()

	out := buf.String()
	if strings.Count(out, "span=") != 2 {
		t.Errorf("expected two span records, got %q", out)
	}
	if !strings.Contains(out, "document_id=d1") || len(span.TraceID) != 32 {
		t.Errorf("root span not logged with attributes: %q", out)
	}
}

func TestDisabledTracerLogsNothing(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracer(config.TracingConfig{Enabled: false, SampleRate: 1})
	tr.logger = slog.New(slog.NewTextHandler(&buf, nil))

	ctx, _, finish := tr.Start(context.Background(), "analyze")
	finish()
	if buf.Len() != 0 {
		t.Errorf("disabled tracer logged %q", buf.String())
	}
	if SpanFromContext(ctx) != nil {
		t.Error("unsampled span stored in context")
	}
}
