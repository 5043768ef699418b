package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/vocab"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/kafka"
)

func event(chars int, richness float64, top ...vocab.WordCount) AnalysisEvent {
	return AnalysisEvent{
		Type:      EventAnalysisComplete,
		Stats:     analyzer.Stats{TotalChars: chars, EnWords: 2, CnChars: 1, SensitiveCount: 1, SectionCount: 1, Richness: richness},
		TopWords:  top,
		LatencyMs: float64(chars),
	}
}

func TestAggregatorTotals(t *testing.T) {
	agg := NewAggregator()
	agg.Track(event(10, 0.5, vocab.WordCount{Word: "go", Count: 3}, vocab.WordCount{Word: "rust", Count: 1}))
	agg.Track(event(30, 1.5, vocab.WordCount{Word: "rust", Count: 2}, vocab.WordCount{Word: "c", Count: 3}))

	s := agg.Stats()
	if s.Documents != 2 || s.TotalChars != 40 || s.EnWords != 4 || s.CnChars != 2 || s.SensitiveHits != 2 || s.Sections != 2 {
		t.Errorf("totals = %+v", s)
	}
	if s.AvgRichness != 1.0 {
		t.Errorf("AvgRichness = %v, want 1", s.AvgRichness)
	}
	if s.AvgLatencyMs != 20 {
		t.Errorf("AvgLatencyMs = %v, want 20", s.AvgLatencyMs)
	}
	want := []vocab.WordCount{{Word: "c", Count: 3}, {Word: "go", Count: 3}, {Word: "rust", Count: 3}}
	if len(s.TopWords) != len(want) {
		t.Fatalf("TopWords = %v", s.TopWords)
	}
	for i := range want {
		if s.TopWords[i] != want[i] {
			t.Errorf("TopWords[%d] = %v, want %v", i, s.TopWords[i], want[i])
		}
	}
}

func TestAggregatorRestore(t *testing.T) {
	agg := NewAggregator()
	agg.Restore(AggregatedStats{
		Documents:   4,
		TotalChars:  100,
		AvgRichness: 0.5,
		TopWords:    []vocab.WordCount{{Word: "go", Count: 5}},
	})
	agg.Track(event(20, 3, vocab.WordCount{Word: "go", Count: 1}))

	s := agg.Stats()
	if s.Documents != 5 || s.TotalChars != 120 {
		t.Errorf("totals after restore = %+v", s)
	}
	if s.AvgRichness != 1.0 {
		t.Errorf("AvgRichness = %v, want 1", s.AvgRichness)
	}
	if s.TopWords[0].Word != "go" || s.TopWords[0].Count != 6 {
		t.Errorf("TopWords = %v", s.TopWords)
	}
}

func TestHandleEventSkipsGarbage(t *testing.T) {
	agg := NewAggregator()
	h := HandleEvent(agg)
	if err := h(context.Background(), nil, []byte("not json")); err != nil {
		t.Errorf("garbage returned %v", err)
	}
	value, _ := json.Marshal(event(5, 1))
	if err := h(context.Background(), []byte("d1"), value); err != nil {
		t.Fatal(err)
	}
	if agg.Stats().Documents != 1 {
		t.Errorf("documents = %d, want 1", agg.Stats().Documents)
	}
}

func TestNewAnalysisEvent(t *testing.T) {
	r := &analysis.Report{DocumentID: "d1", ContentHash: "abc", Stats: analyzer.Stats{TotalChars: 9}, Cached: true}
	ev := NewAnalysisEvent(r, "req-1", 1500*time.Microsecond)
	if ev.Type != EventAnalysisComplete || ev.DocumentID != "d1" || !ev.Cached || ev.LatencyMs != 1.5 || ev.RequestID != "req-1" {
		t.Errorf("event = %+v", ev)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) PublishBatch(ctx context.Context, events []kafka.Event) error {
	for _, e := range events {
		p.Publish(ctx, e)
	}
	return p.err
}

func TestCollectorPublishesAndDrains(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("ignored")}
	c := NewCollector(pub, 16, nil)
	c.Start(context.Background())
	c.Track(AnalysisEvent{DocumentID: "a"})
	c.Track(AnalysisEvent{DocumentID: "b"})
	c.Close()

	if len(pub.events) != 2 || pub.events[0].Key != "a" {
		t.Errorf("published = %+v", pub.events)
	}
}

func TestCollectorDropsWhenFull(t *testing.T) {
	dropped := 0
	c := NewCollector(&recordingPublisher{}, 1, func() { dropped++ })
	c.Track(AnalysisEvent{})
	c.Track(AnalysisEvent{})
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

type fakeSnapshots struct{ snaps []AggregatedStats }

func (f fakeSnapshots) ListSnapshots(_ context.Context, limit int) ([]AggregatedStats, error) {
	if limit < len(f.snaps) {
		return f.snaps[:limit], nil
	}
	return f.snaps, nil
}

func TestHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Track(event(7, 1))
	h := NewHandler(agg, fakeSnapshots{snaps: []AggregatedStats{{Documents: 3}, {Documents: 2}}})

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	var stats AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil || stats.TotalChars != 7 {
		t.Errorf("stats = %+v, %v", stats, err)
	}

	rec = httptest.NewRecorder()
	h.Snapshots(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots?limit=1", nil))
	var body struct{ Snapshots []AggregatedStats }
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || len(body.Snapshots) != 1 {
		t.Errorf("snapshots = %+v, %v", body, err)
	}

	rec = httptest.NewRecorder()
	h.Snapshots(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHandler(agg, nil).Snapshots(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("no snapshot store status = %d", rec.Code)
	}
}
