package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// TestOpenWithPostgres runs the service against a real database; set
// TA_TEST_POSTGRES_HOST to run it.
func TestOpenWithPostgres(t *testing.T) {
	host := os.Getenv("TA_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("TA_TEST_POSTGRES_HOST not set")
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Postgres.Enabled = true
	cfg.Postgres.Host = host
	if port, _ := strconv.Atoi(os.Getenv("TA_TEST_POSTGRES_PORT")); port != 0 {
		cfg.Postgres.Port = port
	}
	cfg.Postgres.Database = "textanalyzer_test"
	cfg.Redis.Enabled = false
	cfg.Vocabulary.Source = "postgres"

	ctx := context.Background()
	a, err := Open(ctx, cfg, "test", metrics.NewWithRegistry(prometheus.NewRegistry()))
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	defer a.Close()

	word := fmt.Sprintf("zz%d", time.Now().UnixNano())
	if err := a.Service.AddVocabulary(ctx, vocabulary.KindSensitive, []string{word}); err != nil {
		t.Fatalf("AddVocabulary: %v", err)
	}
	id := "it-" + word
	r, err := a.Service.Analyze(ctx, analysis.AnalyzeRequest{DocumentID: id, Content: "plain " + word})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Stats.SensitiveCount != 1 {
		t.Errorf("SensitiveCount = %d, want the stored word to be applied", r.Stats.SensitiveCount)
	}
	stored, err := a.Service.Get(ctx, id)
	if err != nil || stored.Stats != r.Stats {
		t.Errorf("Get = %+v, %v", stored, err)
	}
}
