package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/postgres"
)

func report(id string, at time.Time) *analysis.Report {
	return &analysis.Report{DocumentID: id, ContentHash: "h-" + id, AnalyzedAt: at, Words: 1}
}

func TestMemorySaveGetList(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)
	base := time.Unix(1_700_000_000, 0)
	for i := 0; i < 3; i++ {
		m.Save(ctx, report(fmt.Sprintf("d%d", i), base.Add(time.Duration(i)*time.Second)))
	}

	r, err := m.Get(ctx, "d1")
	if err != nil || r.ContentHash != "h-d1" {
		t.Fatalf("Get = %+v, %v", r, err)
	}
	if _, err := m.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrReportNotFound) {
		t.Errorf("missing report error = %v", err)
	}

	list, _ := m.List(ctx, 2)
	if len(list) != 2 || list[0].DocumentID != "d2" || list[1].DocumentID != "d1" {
		t.Errorf("List order wrong: %v, %v", list[0].DocumentID, list[1].DocumentID)
	}
}

func TestMemoryEvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	base := time.Unix(1_700_000_000, 0)
	m.Save(ctx, report("a", base))
	m.Save(ctx, report("b", base.Add(time.Second)))
	m.Save(ctx, report("a", base.Add(2*time.Second)))
	m.Save(ctx, report("c", base.Add(3*time.Second)))

	if m.Len() != 2 {
		t.Fatalf("Len = %d", m.Len())
	}
	if _, err := m.Get(ctx, "b"); err == nil {
		t.Error("oldest report b was not evicted")
	}
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Error("re-saved report a was evicted")
	}
}

// TestPostgresRoundTrip needs a database; set TA_TEST_POSTGRES_HOST to run it.
func TestPostgresRoundTrip(t *testing.T) {
	host := os.Getenv("TA_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("TA_TEST_POSTGRES_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TA_TEST_POSTGRES_PORT"))
	if port == 0 {
		port = 5432
	}
	db, err := postgres.New(config.PostgresConfig{
		Host:         host,
		Port:         port,
		Database:     "textanalyzer_test",
		User:         "textanalyzer",
		Password:     "localdev",
		SSLMode:      "disable",
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	s := NewPostgres(db)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	id := fmt.Sprintf("test-%d", time.Now().UnixNano())
	if err := s.Save(ctx, report(id, time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil || got.ContentHash != "h-"+id {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := s.Get(ctx, id+"-missing"); !errors.Is(err, apperrors.ErrReportNotFound) {
		t.Errorf("missing report error = %v", err)
	}
}
