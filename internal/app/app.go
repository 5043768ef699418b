// Package app connects the backends named in the configuration and builds
// the analysis service the server and the worker share.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/cache"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/service"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/store"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/tracing"
)

// App holds the connected backends. DB and Redis are nil when disabled.
type App struct {
	Config     *config.Config
	DB         *postgres.Client
	Redis      *pkgredis.Client
	Vocabulary *vocabulary.Provider
	Service    *service.Service
	Health     *health.Checker
	Metrics    *metrics.Metrics

	closers []func() error
	logger  *slog.Logger
}

// Open connects PostgreSQL and Redis when enabled, migrates the tables the
// service owns, loads the vocabulary and builds the service. Extra options
// are applied after the ones Open derives from cfg.
func Open(ctx context.Context, cfg *config.Config, name string, m *metrics.Metrics, extra ...service.Option) (*App, error) {
	a := &App{
		Config:  cfg,
		Health:  health.NewChecker(name),
		Metrics: m,
		logger:  slog.Default().With("component", "app", "service", name),
	}
	opts := []service.Option{
		service.WithMetrics(m),
		service.WithTracer(tracing.NewTracer(cfg.Tracing)),
	}

	if cfg.Postgres.Enabled {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		a.DB = db
		a.closers = append(a.closers, db.Close)
		a.Health.Register("postgres", health.PingCheck(db.Ping))

		reports := store.NewPostgres(db)
		words := vocabulary.NewPostgresSource(db)
		for _, migrate := range []func(context.Context) error{reports.Migrate, words.Migrate} {
			if err := migrate(ctx); err != nil {
				a.Close()
				return nil, err
			}
		}
		opts = append(opts, service.WithStore(reports), service.WithVocabularyWriter(words))
		a.logger.Info("postgres connected", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	} else {
		opts = append(opts, service.WithStore(store.NewMemory(0)))
		a.logger.Warn("postgres disabled, reports kept in memory")
	}

	if cfg.Redis.Enabled {
		rc, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			a.logger.Warn("redis unavailable, report caching disabled", "error", err)
		} else {
			a.Redis = rc
			a.closers = append(a.closers, rc.Close)
			a.Health.Register("redis", health.Optional(health.PingCheck(rc.Ping)))
			opts = append(opts, service.WithCache(cache.New(rc, cfg.Redis.CacheTTL)))
			a.logger.Info("report cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	load, err := vocabulary.LoaderFromConfig(cfg.Vocabulary, a.DB)
	if err != nil {
		a.Close()
		return nil, err
	}
	provider, err := vocabulary.NewProvider(ctx, load)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Vocabulary = provider
	a.Health.Register("vocabulary", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d words, fingerprint %s", provider.Current().Size(), provider.Current().Fingerprint()),
		}
	})

	a.Service = service.New(cfg.Analyzer, provider, append(opts, extra...)...)
	return a, nil
}

// Start runs the background loops: vocabulary reloads.
func (a *App) Start(ctx context.Context) {
	a.Vocabulary.StartReloadLoop(ctx, a.Config.Vocabulary.ReloadInterval)
}

// Close releases the backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// ShutdownContext returns a context bounded by the server's shutdown timeout.
func (a *App) ShutdownContext() (context.Context, context.CancelFunc) {
	d := a.Config.Server.ShutdownTimeout
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), d)
}
