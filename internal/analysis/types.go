// Package analysis defines the request, report and payload types of the
// analysis service built on top of the analyzer core.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/section"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/vocab"
)

// AnalyzeRequest is the JSON body accepted by the analyze endpoint and the
// analyze-requests topic.
type AnalyzeRequest struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title,omitempty"`
	Content    string `json:"content"`
	TopN       int    `json:"top_n,omitempty"`
}

// Report is the result of analysing one document.
type Report struct {
	DocumentID     string            `json:"document_id"`
	Title          string            `json:"title,omitempty"`
	ContentHash    string            `json:"content_hash"`
	Vocabulary     string            `json:"vocabulary_fingerprint"`
	Stats          analyzer.Stats    `json:"stats"`
	Words          int               `json:"words"`
	UniqueWords    int               `json:"unique_words"`
	Sections       []section.Section `json:"sections"`
	TopWords       []vocab.WordCount `json:"top_words"`
	SensitiveWords []vocab.WordCount `json:"sensitive_words"`
	Cached         bool              `json:"cached"`
	DurationMs     float64           `json:"duration_ms"`
	AnalyzedAt     time.Time         `json:"analyzed_at"`
}

// ContentHash returns the hex SHA-256 of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// DefaultDocumentID derives an ID for requests that do not name one.
func DefaultDocumentID(contentHash string) string {
	if len(contentHash) > 16 {
		contentHash = contentHash[:16]
	}
	return "doc-" + contentHash
}

// ForDocument returns a copy of r attributed to another request. Slices are
// shared; reports are never mutated after they are built.
func (r *Report) ForDocument(documentID, title string, cached bool) *Report {
	cp := *r
	cp.DocumentID = documentID
	cp.Title = title
	cp.Cached = cached
	return &cp
}
