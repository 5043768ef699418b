// Package cache keeps analysis reports in Redis keyed by content and
// vocabulary, and collapses concurrent analyses of the same document into
// one computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	pkgredis "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "analysis:"

// Backend is the subset of the Redis client the cache uses.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// ReportCache caches reports. A nil backend disables storage but keeps
// request collapsing.
type ReportCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(backend Backend, ttl time.Duration) *ReportCache {
	return &ReportCache{
		backend: backend,
		ttl:     ttl,
		logger:  slog.Default().With("component", "report-cache"),
	}
}

// Key identifies a report by the analysed content, the vocabulary
// fingerprint in effect and the requested top-word count.
func Key(content, fingerprint string, topN int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d\x00", topN)
	h.Write([]byte(content))
	return fmt.Sprintf("%s%s:%x", keyPrefix, fingerprint, h.Sum(nil)[:16])
}

// Get returns the cached report for key and counts the hit or miss. Without
// a backend nothing is counted.
func (c *ReportCache) Get(ctx context.Context, key string) (*analysis.Report, bool) {
	if c.backend == nil {
		return nil, false
	}
	r, ok := c.lookup(ctx, key)
	if ok {
		c.hits.Add(1)
		c.logger.Debug("cache hit", "key", key)
	} else {
		c.misses.Add(1)
	}
	return r, ok
}

// lookup reads key from the backend without touching the counters.
func (c *ReportCache) lookup(ctx context.Context, key string) (*analysis.Report, bool) {
	if c.backend == nil {
		return nil, false
	}
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return &report, true
}

// Set stores report under key. Failures are logged.
func (c *ReportCache) Set(ctx context.Context, key string, report *analysis.Report) {
	if c.backend == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached report for key or runs compute once for
// all concurrent callers asking for the same key. cached reports whether
// the result came from the backend.
func (c *ReportCache) GetOrCompute(
	ctx context.Context,
	key string,
	compute func() (*analysis.Report, error),
) (report *analysis.Report, cached bool, err error) {
	if r, ok := c.Get(ctx, key); ok {
		return r, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have stored the report since the miss above.
		if r, ok := c.lookup(ctx, key); ok {
			return cachedReport{r}, nil
		}
		r, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, r)
		return r, nil
	})
	if err != nil {
		return nil, false, err
	}
	if cr, ok := val.(cachedReport); ok {
		return cr.report, true, nil
	}
	return val.(*analysis.Report), false, nil
}

type cachedReport struct{ report *analysis.Report }

// Invalidate drops every report computed with the given vocabulary
// fingerprint; an empty fingerprint drops all reports.
func (c *ReportCache) Invalidate(ctx context.Context, fingerprint string) (int64, error) {
	if c.backend == nil {
		return 0, nil
	}
	pattern := keyPrefix + "*"
	if fingerprint != "" {
		pattern = keyPrefix + fingerprint + ":*"
	}
	deleted, err := c.backend.FlushByPattern(ctx, pattern)
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "pattern", pattern, "keys_deleted", deleted)
	return deleted, nil
}

func (c *ReportCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
