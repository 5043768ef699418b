// Package analytics aggregates completed analyses across documents and
// ships analysis events to Kafka.
package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/vocab"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/kafka"
)

const topListSize = 10

type AggregatedStats struct {
	Documents          int64             `json:"documents"`
	CachedDocuments    int64             `json:"cached_documents"`
	TotalChars         int64             `json:"total_chars"`
	EnWords            int64             `json:"en_words"`
	CnChars            int64             `json:"cn_chars"`
	SensitiveHits      int64             `json:"sensitive_hits"`
	RedundantHits      int64             `json:"redundant_hits"`
	PunctCount         int64             `json:"punct_count"`
	Sections           int64             `json:"sections"`
	AvgRichness        float64           `json:"avg_richness"`
	AvgLatencyMs       float64           `json:"avg_latency_ms"`
	P50LatencyMs       float64           `json:"p50_latency_ms"`
	P95LatencyMs       float64           `json:"p95_latency_ms"`
	P99LatencyMs       float64           `json:"p99_latency_ms"`
	TopWords           []vocab.WordCount `json:"top_words"`
	TopSensitiveWords  []vocab.WordCount `json:"top_sensitive_words"`
	DocumentsPerMinute float64           `json:"documents_per_minute"`
}

// Aggregator folds analysis events into running totals. Word lists are
// merged from each event's top words, so cross-document rankings are
// approximate for words outside any document's top list.
type Aggregator struct {
	mu              sync.RWMutex
	documents       atomic.Int64
	cachedDocuments atomic.Int64
	totalChars      atomic.Int64
	enWords         atomic.Int64
	cnChars         atomic.Int64
	sensitiveHits   atomic.Int64
	redundantHits   atomic.Int64
	punctCount      atomic.Int64
	sections        atomic.Int64
	richnessSum     float64
	latencies       []float64
	wordCounts      map[string]int64
	sensitiveCounts map[string]int64
	startTime       time.Time
	maxLatencies    int

	logger *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:       make([]float64, 0, 1024),
		wordCounts:      make(map[string]int64),
		sensitiveCounts: make(map[string]int64),
		startTime:       time.Now(),
		maxLatencies:    10000,
		logger:          slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a Kafka handler feeding agg. Undecodable messages are
// logged and skipped.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[AnalysisEvent](value)
		if err != nil || event.Type != EventAnalysisComplete {
			agg.logger.Error("failed to decode analysis event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		agg.Track(event)
		return nil
	}
}

// Track records one analysis.
func (a *Aggregator) Track(event AnalysisEvent) {
	a.documents.Add(1)
	if event.Cached {
		a.cachedDocuments.Add(1)
	}
	a.totalChars.Add(int64(event.Stats.TotalChars))
	a.enWords.Add(int64(event.Stats.EnWords))
	a.cnChars.Add(int64(event.Stats.CnChars))
	a.sensitiveHits.Add(int64(event.Stats.SensitiveCount))
	a.redundantHits.Add(int64(event.Stats.RedundancyCount))
	a.punctCount.Add(int64(event.Stats.PunctCount))
	a.sections.Add(int64(event.Stats.SectionCount))

	a.mu.Lock()
	a.richnessSum += event.Stats.Richness
	if len(a.latencies) >= a.maxLatencies {
		copy(a.latencies, a.latencies[1:])
		a.latencies = a.latencies[:len(a.latencies)-1]
	}
	a.latencies = append(a.latencies, event.LatencyMs)
	for _, wc := range event.TopWords {
		a.wordCounts[wc.Word] += int64(wc.Count)
	}
	for _, wc := range event.SensitiveWords {
		a.sensitiveCounts[wc.Word] += int64(wc.Count)
	}
	a.mu.Unlock()
}

// Restore seeds the totals from a saved snapshot.
func (a *Aggregator) Restore(s AggregatedStats) {
	a.documents.Store(s.Documents)
	a.cachedDocuments.Store(s.CachedDocuments)
	a.totalChars.Store(s.TotalChars)
	a.enWords.Store(s.EnWords)
	a.cnChars.Store(s.CnChars)
	a.sensitiveHits.Store(s.SensitiveHits)
	a.redundantHits.Store(s.RedundantHits)
	a.punctCount.Store(s.PunctCount)
	a.sections.Store(s.Sections)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.richnessSum = s.AvgRichness * float64(s.Documents)
	for _, wc := range s.TopWords {
		a.wordCounts[wc.Word] += int64(wc.Count)
	}
	for _, wc := range s.TopSensitiveWords {
		a.sensitiveCounts[wc.Word] += int64(wc.Count)
	}
	a.logger.Info("aggregator restored from snapshot", "documents", s.Documents)
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		Documents:       a.documents.Load(),
		CachedDocuments: a.cachedDocuments.Load(),
		TotalChars:      a.totalChars.Load(),
		EnWords:         a.enWords.Load(),
		CnChars:         a.cnChars.Load(),
		SensitiveHits:   a.sensitiveHits.Load(),
		RedundantHits:   a.redundantHits.Load(),
		PunctCount:      a.punctCount.Load(),
		Sections:        a.sections.Load(),
	}
	if stats.Documents > 0 {
		stats.AvgRichness = a.richnessSum / float64(stats.Documents)
	}
	if len(a.latencies) > 0 {
		sorted := make([]float64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Float64s(sorted)

		var sum float64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = sum / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopWords = topN(a.wordCounts, topListSize)
	stats.TopSensitiveWords = topN(a.sensitiveCounts, topListSize)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.DocumentsPerMinute = float64(stats.Documents) / elapsed
	}

	return stats
}

func percentile(sorted []float64, pct int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN ranks by count, then alphabetically so equal counts are stable
// across calls.
func topN(counts map[string]int64, n int) []vocab.WordCount {
	result := make([]vocab.WordCount, 0, len(counts))
	for word, count := range counts {
		result = append(result, vocab.WordCount{Word: word, Count: int(count)})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Word < result[j].Word
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
