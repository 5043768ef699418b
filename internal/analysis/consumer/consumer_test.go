package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type analyzerFunc func(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error)

func (f analyzerFunc) Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error) {
	return f(ctx, req)
}

func TestHandleMessage(t *testing.T) {
	var got []analysis.AnalyzeRequest
	a := analyzerFunc(func(_ context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error) {
		got = append(got, req)
		switch req.Content {
		case "":
			return nil, &validator.ValidationError{Fields: map[string]string{"content": "required"}}
		case "fail":
			return nil, errors.New("store down")
		}
		return &analysis.Report{DocumentID: req.DocumentID}, nil
	})
	reg := prometheus.NewRegistry()
	handle := HandleMessage(a, metrics.NewWithRegistry(reg))
	ctx := context.Background()

	if err := handle(ctx, []byte("k1"), []byte(`{"content":"hello"}`)); err != nil {
		t.Fatalf("valid message: %v", err)
	}
	if got[0].DocumentID != "k1" {
		t.Errorf("document id = %q, want key k1", got[0].DocumentID)
	}
	if err := handle(ctx, []byte("k2"), []byte(`{"document_id":"own","content":"hi"}`)); err != nil || got[1].DocumentID != "own" {
		t.Errorf("explicit id: err = %v, id = %q", err, got[1].DocumentID)
	}
	if err := handle(ctx, nil, []byte(`{not json`)); err != nil {
		t.Errorf("undecodable message returned %v", err)
	}
	if err := handle(ctx, nil, []byte(`{"content":""}`)); err != nil {
		t.Errorf("invalid request returned %v", err)
	}
	if err := handle(ctx, nil, []byte(`{"content":"fail"}`)); err == nil || errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("failure err = %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "worker_messages_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	if counts["processed"] != 2 || counts["skipped"] != 2 || counts["failed"] != 1 {
		t.Errorf("worker counts = %v", counts)
	}
}
