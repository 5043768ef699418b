package remote

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/service"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/store"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/rpc"
)

func dialTestServer(t *testing.T) *Client {
	t.Helper()
	lists := &vocabulary.Lists{Stop: []string{"the"}, Sensitive: []string{"secret"}}
	svc := service.New(config.AnalyzerConfig{TopWords: 5, MaxDocumentBytes: 1 << 10},
		vocabulary.Static(lists), service.WithStore(store.NewMemory(10)))

	s := rpc.NewServer()
	Register(s, svc)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go s.ServeListener(ln)
	t.Cleanup(s.Stop)

	c, err := Dial(context.Background(), ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestAnalyzeAndFetchOverRPC(t *testing.T) {
	c := dialTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r, err := c.Analyze(ctx, analysis.AnalyzeRequest{DocumentID: "doc-1", Content: "The secret plan. The plan!\n"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.DocumentID != "doc-1" || r.Stats.EnWords != 5 || r.Stats.SensitiveCount != 1 {
		t.Errorf("report = %+v", r)
	}
	if len(r.TopWords) != 1 || r.TopWords[0].Word != "plan" || r.TopWords[0].Count != 2 {
		t.Errorf("top words = %+v", r.TopWords)
	}

	got, err := c.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContentHash != r.ContentHash {
		t.Errorf("stored hash = %q, want %q", got.ContentHash, r.ContentHash)
	}

	info, err := c.Vocabulary(ctx)
	if err != nil {
		t.Fatalf("Vocabulary: %v", err)
	}
	if info.Stop != 1 || info.Sensitive != 1 || info.Fingerprint != r.Vocabulary {
		t.Errorf("vocabulary = %+v, report fingerprint %q", info, r.Vocabulary)
	}
}

func TestRemoteErrorsKeepTheirClass(t *testing.T) {
	c := dialTestServer(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrReportNotFound) {
		t.Errorf("Get missing = %v, want ErrReportNotFound", err)
	}
	if _, err := c.Analyze(ctx, analysis.AnalyzeRequest{Content: "   "}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Analyze blank = %v, want ErrInvalidInput", err)
	}
}
