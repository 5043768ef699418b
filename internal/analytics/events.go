package analytics

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/vocab"
)

type EventType string

const (
	EventAnalysisComplete EventType = "analysis_complete"
)

// AnalysisEvent is published to the analysis-complete topic after every
// successful analysis, cached or not.
type AnalysisEvent struct {
	Type           EventType         `json:"type"`
	DocumentID     string            `json:"document_id"`
	ContentHash    string            `json:"content_hash"`
	Stats          analyzer.Stats    `json:"stats"`
	UniqueWords    int               `json:"unique_words"`
	TopWords       []vocab.WordCount `json:"top_words"`
	SensitiveWords []vocab.WordCount `json:"sensitive_words"`
	Cached         bool              `json:"cached"`
	LatencyMs      float64           `json:"latency_ms"`
	Timestamp      time.Time         `json:"timestamp"`
	RequestID      string            `json:"request_id,omitempty"`
}

// NewAnalysisEvent summarises r.
func NewAnalysisEvent(r *analysis.Report, requestID string, latency time.Duration) AnalysisEvent {
	return AnalysisEvent{
		Type:           EventAnalysisComplete,
		DocumentID:     r.DocumentID,
		ContentHash:    r.ContentHash,
		Stats:          r.Stats,
		UniqueWords:    r.UniqueWords,
		TopWords:       r.TopWords,
		SensitiveWords: r.SensitiveWords,
		Cached:         r.Cached,
		LatencyMs:      float64(latency.Microseconds()) / 1000,
		Timestamp:      time.Now().UTC(),
		RequestID:      requestID,
	}
}
