// Package analyzer runs the single-pass statistical analysis of a text
// document: character classification, heading-based sectioning, vocabulary
// classification of words and CJK ideographs, and the post-pass ratio and
// lexical-richness computation.
//
// A Session is created per document, configured with lookup vocabularies,
// processed exactly once and then read. Sessions are not safe for
// concurrent use; parallel analyses use independent sessions.
package analyzer

import (
	"math"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/charclass"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/section"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/vocab"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
)

// Stats is the running statistics snapshot of a session.
type Stats struct {
	TotalChars      int     `json:"total_chars"`
	EnWords         int     `json:"en_words"`
	CnChars         int     `json:"cn_chars"`
	SensitiveCount  int     `json:"sensitive_count"`
	RedundancyCount int     `json:"redundancy_count"`
	PunctCount      int     `json:"punct_count"`
	SectionCount    int     `json:"section_count"`
	Richness        float64 `json:"richness"`
}

// Words is the combined English word and CJK character count.
func (s Stats) Words() int {
	return s.EnWords + s.CnChars
}

// Options bounds the memory a session may use.
type Options struct {
	MaxWordLen  int `yaml:"maxWordLen"`
	MaxTitleLen int `yaml:"maxTitleLen"`
	MaxSections int `yaml:"maxSections"`
	BucketCount int `yaml:"bucketCount"`
}

// DefaultOptions returns the bounds used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxWordLen:  vocab.DefaultMaxKeyLen + 1,
		MaxTitleLen: section.DefaultMaxTitleLen,
		MaxSections: section.DefaultMaxSections,
		BucketCount: vocab.DefaultBucketCount,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxWordLen <= 1 {
		o.MaxWordLen = d.MaxWordLen
	}
	if o.MaxTitleLen <= 1 {
		o.MaxTitleLen = d.MaxTitleLen
	}
	if o.MaxSections <= 0 {
		o.MaxSections = d.MaxSections
	}
	if o.BucketCount <= 0 {
		o.BucketCount = d.BucketCount
	}
	return o
}

// Session owns the five vocabulary stores, the section scanner and the
// running statistics of one document analysis.
type Session struct {
	opts Options

	freq          *vocab.Store
	sensitiveHits *vocab.Store
	stopSet       *vocab.Store
	sensitiveSet  *vocab.Store
	redundantSet  *vocab.Store

	// longest multi-character CJK entry across the lookup sets, in runes
	maxPhraseRunes int

	sections  *section.Scanner
	stats     Stats
	processed bool
	closed    bool
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	opts = opts.withDefaults()
	store := func() *vocab.Store {
		return vocab.New(
			vocab.WithBucketCount(opts.BucketCount),
			vocab.WithMaxKeyLen(opts.MaxWordLen-1),
		)
	}
	return &Session{
		opts:          opts,
		freq:          store(),
		sensitiveHits: store(),
		stopSet:       store(),
		sensitiveSet:  store(),
		redundantSet:  store(),
		sections: section.NewScanner(
			section.WithMaxSections(opts.MaxSections),
			section.WithMaxTitleLen(opts.MaxTitleLen),
		),
	}
}

// AddStopWord excludes word from the frequency table.
func (s *Session) AddStopWord(word string) { s.addLookup(s.stopSet, word) }

// AddSensitiveWord flags word as sensitive content.
func (s *Session) AddSensitiveWord(word string) { s.addLookup(s.sensitiveSet, word) }

// AddRedundantWord flags word as filler content.
func (s *Session) AddRedundantWord(word string) { s.addLookup(s.redundantSet, word) }

func (s *Session) addLookup(set *vocab.Store, word string) {
	if s.closed || word == "" {
		return
	}
	set.Add(word)
	if n := utf8.RuneCountInString(word); n > 1 && n > s.maxPhraseRunes && isIdeographRun(word) {
		s.maxPhraseRunes = n
	}
}

// Process runs the single analysis pass over text. It returns
// ErrAlreadyProcessed when called a second time on the same session.
func (s *Session) Process(text []byte) error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	if s.processed {
		return apperrors.ErrAlreadyProcessed
	}
	s.processed = true

	p := pass{s: s, word: make([]byte, 0, s.opts.MaxWordLen-1)}
	p.run(text)

	s.sections.Finish()
	s.stats.SectionCount = s.sections.Count()
	s.stats.Richness = richness(s.freq)
	return nil
}

// Stats returns a snapshot of the running statistics.
func (s *Session) Stats() Stats {
	return s.stats
}

// TopWords returns the n most frequent counted words and ideographs.
func (s *Session) TopWords(n int) []vocab.WordCount {
	if s.closed {
		return nil
	}
	return s.freq.TopN(n)
}

// SensitiveHits returns the n most frequent sensitive terms found.
func (s *Session) SensitiveHits(n int) []vocab.WordCount {
	if s.closed {
		return nil
	}
	return s.sensitiveHits.TopN(n)
}

// Sections returns at most max sections in document order.
func (s *Session) Sections(max int) []section.Section {
	if s.closed {
		return nil
	}
	return s.sections.Sections(max)
}

// FrequencyCounts returns the unique and total counts of the frequency table.
func (s *Session) FrequencyCounts() (unique, total int) {
	if s.closed {
		return 0, 0
	}
	return s.freq.UniqueCount(), s.freq.TotalCount()
}

// Close releases the session's stores. Reads after Close return zero values.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.freq, s.sensitiveHits = nil, nil
	s.stopSet, s.sensitiveSet, s.redundantSet = nil, nil, nil
	s.sections = section.NewScanner()
	s.stats = Stats{}
}

// richness is the root type-token ratio of the frequency table.
func richness(freq *vocab.Store) float64 {
	total := freq.TotalCount()
	if total == 0 {
		return 0
	}
	return float64(freq.UniqueCount()) / math.Sqrt(2*float64(total))
}

func isIdeographRun(word string) bool {
	for _, r := range word {
		if !charclass.IsIdeograph(r) {
			return false
		}
	}
	return true
}
