// Package service runs analyses end to end: validation, the report cache,
// the analyzer session, persistence, event publication and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/cache"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/validator"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/tracing"
)

// ReportStore persists reports; store.Postgres and store.Memory implement it.
type ReportStore interface {
	Save(ctx context.Context, r *analysis.Report) error
	Get(ctx context.Context, documentID string) (*analysis.Report, error)
	List(ctx context.Context, limit int) ([]*analysis.Report, error)
}

// EventSink receives one event per completed analysis.
type EventSink interface {
	Track(event analytics.AnalysisEvent)
}

// VocabularyWriter stores additional lookup words; vocabulary.PostgresSource
// implements it.
type VocabularyWriter interface {
	Save(ctx context.Context, kind vocabulary.Kind, words []string) error
}

type Service struct {
	cfg     config.AnalyzerConfig
	vocab   *vocabulary.Provider
	cache   *cache.ReportCache
	store   ReportStore
	writer  VocabularyWriter
	sinks   []EventSink
	metrics *metrics.Metrics
	tracer  *tracing.Tracer
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Service)

func WithCache(c *cache.ReportCache) Option { return func(s *Service) { s.cache = c } }

func WithStore(st ReportStore) Option { return func(s *Service) { s.store = st } }

// WithEvents adds sinks; nil sinks are ignored.
func WithEvents(sinks ...EventSink) Option {
	return func(s *Service) {
		for _, sink := range sinks {
			if sink != nil {
				s.sinks = append(s.sinks, sink)
			}
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithTracer(t *tracing.Tracer) Option { return func(s *Service) { s.tracer = t } }

func WithVocabularyWriter(w VocabularyWriter) Option { return func(s *Service) { s.writer = w } }

// WithPersistTimeout bounds each attempt to save a report.
func WithPersistTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

// New creates a service analysing with cfg's bounds and the lists served
// by vocab. Without WithStore nothing is persisted and Get reports
// ErrReportNotFound.
func New(cfg config.AnalyzerConfig, vocab *vocabulary.Provider, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		vocab:   vocab,
		retry:   resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond, MaxDelay: time.Second},
		timeout: 2 * time.Second,
		logger:  slog.Default().With("component", "analysis-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(nil, 0)
	}
	s.retry.Retryable = func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, resilience.ErrCircuitOpen)
	}
	s.breaker = resilience.NewCircuitBreaker("report-store", resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		OnStateChange: func(name string, to resilience.State) {
			if s.metrics != nil {
				s.metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	if s.metrics != nil && vocab != nil {
		s.recordVocabularySize(vocab.Current())
	}
	return s
}

// Analyze validates req and returns its report, from the cache when the
// same content was analysed with the same vocabulary and top-word count.
func (s *Service) Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error) {
	start := time.Now()
	log := logger.FromContext(ctx)
	ctx, span, finish := s.tracer.Start(ctx, "analysis.analyze")
	defer finish()

	if err := validator.ValidateAnalyzeRequest(&req, validator.Limits{MaxDocumentBytes: s.cfg.MaxDocumentBytes}); err != nil {
		s.countResult("invalid")
		return nil, err
	}

	topN := req.TopN
	if topN == 0 {
		topN = s.cfg.TopWords
	}
	lists := s.vocab.Current()
	fingerprint := lists.Fingerprint()
	contentHash := analysis.ContentHash(req.Content)
	documentID := req.DocumentID
	if documentID == "" {
		documentID = analysis.DefaultDocumentID(contentHash)
	}
	span.SetAttr("document_id", documentID)
	span.SetAttr("bytes", len(req.Content))

	key := cache.Key(req.Content, fingerprint, topN)
	shared, cached, err := s.cache.GetOrCompute(ctx, key, func() (*analysis.Report, error) {
		_, child, done := s.tracer.Start(ctx, "analysis.session")
		defer done()
		r, err := s.run(ctx, req.Content, lists, topN)
		if err != nil {
			return nil, err
		}
		r.ContentHash = contentHash
		child.SetAttr("total_chars", r.Stats.TotalChars)
		return r, nil
	})
	if err != nil {
		s.countResult("error")
		log.Error("analysis failed", "doc_id", documentID, "error", err)
		return nil, fmt.Errorf("analysing %s: %w", documentID, err)
	}
	report := shared.ForDocument(documentID, req.Title, cached)
	span.SetAttr("cached", cached)

	s.persist(ctx, report)

	latency := time.Since(start)
	for _, sink := range s.sinks {
		sink.Track(analytics.NewAnalysisEvent(report, logger.RequestID(ctx), latency))
	}
	s.observe(report, cached)

	log.Info("document analysed",
		"doc_id", documentID,
		"total_chars", report.Stats.TotalChars,
		"words", report.Words,
		"sections", report.Stats.SectionCount,
		"sensitive", report.Stats.SensitiveCount,
		"cached", cached,
		"latency", latency,
	)
	return report, nil
}

// Get loads a persisted report.
func (s *Service) Get(ctx context.Context, documentID string) (*analysis.Report, error) {
	if s.store == nil {
		return nil, fmt.Errorf("report %s: %w", documentID, apperrors.ErrReportNotFound)
	}
	return s.store.Get(ctx, documentID)
}

// List returns recent reports, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*analysis.Report, error) {
	if s.store == nil {
		return []*analysis.Report{}, nil
	}
	return s.store.List(ctx, limit)
}

// AddVocabulary stores words in the writable vocabulary source, reloads the
// lists and drops cached reports computed with the previous lists.
func (s *Service) AddVocabulary(ctx context.Context, kind vocabulary.Kind, words []string) error {
	if !kind.Valid() {
		return apperrors.Newf(apperrors.ErrInvalidInput, 400, "unknown vocabulary kind %q", kind)
	}
	if s.writer == nil {
		return apperrors.ErrVocabularyReadOnly
	}
	previous := s.vocab.Current().Fingerprint()
	if err := s.writer.Save(ctx, kind, words); err != nil {
		return fmt.Errorf("saving %s words: %w", kind, err)
	}
	if err := s.vocab.Reload(ctx); err != nil {
		return err
	}
	s.recordVocabularySize(s.vocab.Current())
	s.logger.Info("vocabulary extended", "kind", kind, "words", len(words), "previous_fingerprint", previous)
	if _, err := s.cache.Invalidate(ctx, previous); err != nil {
		logger.FromContext(ctx).Warn("stale reports left in cache", "error", err)
	}
	return nil
}

// CacheStats returns the report cache's hit and miss counts.
func (s *Service) CacheStats() (hits, misses int64) {
	return s.cache.Stats()
}

// InvalidateCache drops cached reports computed with the given vocabulary
// fingerprint, or every cached report when fingerprint is empty.
func (s *Service) InvalidateCache(ctx context.Context, fingerprint string) (int64, error) {
	return s.cache.Invalidate(ctx, fingerprint)
}

// Vocabulary returns the lists in effect.
func (s *Service) Vocabulary() *vocabulary.Lists {
	return s.vocab.Current()
}

func (s *Service) run(ctx context.Context, content string, lists *vocabulary.Lists, topN int) (*analysis.Report, error) {
	started := time.Now()
	session := analyzer.NewSession(analyzer.Options{
		MaxWordLen:  s.cfg.MaxWordLen,
		MaxTitleLen: s.cfg.MaxTitleLen,
		MaxSections: s.cfg.MaxSections,
		BucketCount: s.cfg.BucketCount,
	})
	defer session.Close()

	lists.Apply(session)
	if err := session.Process([]byte(content)); err != nil {
		return nil, err
	}
	elapsed := time.Since(started)
	if s.metrics != nil {
		s.metrics.AnalysisDuration.Observe(elapsed.Seconds())
	}

	stats := session.Stats()
	unique, _ := session.FrequencyCounts()
	sections := session.Sections(stats.SectionCount)
	log := logger.FromContext(ctx)
	for _, sec := range sections {
		log.Debug("section",
			"section_id", sec.ID,
			"title", sec.Title,
			"level", sec.Level,
			"length", sec.Length,
			"ratio", sec.Ratio,
		)
	}
	return &analysis.Report{
		Vocabulary:     lists.Fingerprint(),
		Stats:          stats,
		Words:          stats.Words(),
		UniqueWords:    unique,
		Sections:       sections,
		TopWords:       session.TopWords(topN),
		SensitiveWords: session.SensitiveHits(topN),
		DurationMs:     float64(elapsed.Microseconds()) / 1000,
		AnalyzedAt:     time.Now().UTC(),
	}, nil
}

func (s *Service) persist(ctx context.Context, r *analysis.Report) {
	if s.store == nil {
		return
	}
	ctx, _, finish := s.tracer.Start(ctx, "analysis.persist")
	defer finish()

	err := resilience.Retry(ctx, "save-report", s.retry, func() error {
		return s.breaker.Execute(func() error {
			return resilience.WithTimeout(ctx, s.timeout, "save-report", func(ctx context.Context) error {
				return s.store.Save(ctx, r)
			})
		})
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.PersistFailuresTotal.Inc()
		}
		logger.FromContext(ctx).Error("report not persisted", "doc_id", r.DocumentID, "error", err)
	}
}

func (s *Service) observe(r *analysis.Report, cached bool) {
	if s.metrics == nil {
		return
	}
	if cached {
		s.countResult("cached")
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.countResult("ok")
		s.metrics.CacheMissesTotal.Inc()
	}
	s.metrics.CharsProcessedTotal.Add(float64(r.Stats.TotalChars))
	s.metrics.WordsCountedTotal.WithLabelValues("latin").Add(float64(r.Stats.EnWords))
	s.metrics.WordsCountedTotal.WithLabelValues("cjk").Add(float64(r.Stats.CnChars))
	s.metrics.SensitiveHitsTotal.Add(float64(r.Stats.SensitiveCount))
	s.metrics.RedundantHitsTotal.Add(float64(r.Stats.RedundancyCount))
	s.metrics.SectionsPerDocument.Observe(float64(r.Stats.SectionCount))
}

func (s *Service) countResult(result string) {
	if s.metrics != nil {
		s.metrics.AnalysesTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) recordVocabularySize(l *vocabulary.Lists) {
	if s.metrics == nil || l == nil {
		return
	}
	s.metrics.VocabularySize.WithLabelValues(string(vocabulary.KindStop)).Set(float64(len(l.Stop)))
	s.metrics.VocabularySize.WithLabelValues(string(vocabulary.KindSensitive)).Set(float64(len(l.Sensitive)))
	s.metrics.VocabularySize.WithLabelValues(string(vocabulary.KindRedundant)).Set(float64(len(l.Redundant)))
}
