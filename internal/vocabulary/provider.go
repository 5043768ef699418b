package vocabulary

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/postgres"
)

// Loader produces a fresh copy of the lookup lists.
type Loader func(ctx context.Context) (*Lists, error)

// Provider serves the current lookup lists and swaps in reloaded ones
// without blocking readers.
type Provider struct {
	load    Loader
	current atomic.Pointer[Lists]
	logger  *slog.Logger
}

// NewProvider loads the lists once and returns a provider serving them.
func NewProvider(ctx context.Context, load Loader) (*Provider, error) {
	p := &Provider{
		load:   load,
		logger: slog.Default().With("component", "vocabulary"),
	}
	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Static returns a provider that always serves lists.
func Static(lists *Lists) *Provider {
	if lists == nil {
		lists = &Lists{}
	}
	p := &Provider{
		load:   func(context.Context) (*Lists, error) { return lists, nil },
		logger: slog.Default().With("component", "vocabulary"),
	}
	p.current.Store(lists)
	return p
}

// Current returns the lists in effect.
func (p *Provider) Current() *Lists {
	return p.current.Load()
}

// Reload fetches the lists again and makes them current.
func (p *Provider) Reload(ctx context.Context) error {
	lists, err := p.load(ctx)
	if err != nil {
		return fmt.Errorf("loading vocabulary: %w", err)
	}
	p.current.Store(lists)
	p.logger.Info("vocabulary loaded",
		"stop", len(lists.Stop),
		"sensitive", len(lists.Sensitive),
		"redundant", len(lists.Redundant),
		"fingerprint", lists.Fingerprint(),
	)
	return nil
}

// StartReloadLoop reloads the lists every interval until ctx is cancelled.
// A failed reload keeps the previous lists.
func (p *Provider) StartReloadLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.Reload(ctx); err != nil {
					p.logger.Error("periodic vocabulary reload failed", "error", err)
				}
			}
		}
	}()
	p.logger.Info("vocabulary reload loop started", "interval", interval)
}

// LoaderFromConfig builds the loader cfg describes. db may be nil unless
// cfg.Source is "postgres".
func LoaderFromConfig(cfg config.VocabularyConfig, db *postgres.Client) (Loader, error) {
	fileLoader := func(ctx context.Context) (*Lists, error) {
		lists, err := LoadFiles(cfg.StopFile, cfg.SensitiveFile, cfg.RedundantFile)
		if err != nil {
			return nil, err
		}
		if cfg.BundleFile == "" {
			return lists, nil
		}
		bundle, err := LoadBundle(cfg.BundleFile)
		if err != nil {
			return nil, err
		}
		return Merge(lists, bundle), nil
	}

	switch cfg.Source {
	case "", "file":
		return fileLoader, nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres vocabulary source needs a database client")
		}
		src := NewPostgresSource(db)
		return func(ctx context.Context) (*Lists, error) {
			stored, err := src.Load(ctx)
			if err != nil {
				return nil, err
			}
			files, err := fileLoader(ctx)
			if err != nil {
				return nil, err
			}
			return Merge(files, stored), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown vocabulary source %q", cfg.Source)
	}
}
