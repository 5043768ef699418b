// Command analytics aggregates analysis-complete events across all analyzer
// servers and workers.
//
// It keeps running totals in memory (documents, characters, words,
// sensitive and redundant hits, richness, latency percentiles, top words),
// snapshots them to PostgreSQL when enabled and resumes from the latest
// snapshot on start. GET /api/v1/analytics serves the live totals.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-snapshot-interval 1m]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/postgres"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	snapshotInterval := flag.Duration("snapshot-interval", time.Minute, "how often totals are saved to PostgreSQL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if !cfg.Kafka.Enabled {
		slog.Error("analytics service needs kafka.enabled")
		os.Exit(1)
	}
	slog.Info("starting analytics service", "port", cfg.Server.Port, "topic", cfg.Kafka.Topics.AnalysisComplete)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *snapshotInterval); err != nil {
		slog.Error("analytics service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("analytics service stopped")
}

func run(ctx context.Context, cfg *config.Config, snapshotInterval time.Duration) error {
	m := metrics.New()
	agg := analytics.NewAggregator()
	checker := health.NewChecker("analytics")

	var snapshots analytics.SnapshotLister
	if cfg.Postgres.Enabled {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer db.Close()
		checker.Register("postgres", health.PingCheck(db.Ping))

		store := aggregator.NewStore(db)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		latest, err := store.LatestSnapshot(ctx)
		if err != nil {
			return err
		}
		if latest != nil {
			agg.Restore(*latest)
			slog.Info("analytics restored from snapshot", "documents", latest.Documents)
		}
		store.StartPeriodicSave(ctx, agg, snapshotInterval)
		snapshots = store
	}

	events := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalysisComplete, analytics.HandleEvent(agg))
	defer events.Close()
	checker.Register("aggregator", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents aggregated", agg.Stats().Documents),
		}
	})

	h := analytics.NewHandler(agg, snapshots)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", h.Snapshots)
	mux.Handle("GET /health/live", checker.LiveHandler())
	mux.Handle("GET /health/ready", checker.ReadyHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      middleware.Chain(mux, middleware.RequestID, middleware.Metrics(m)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, "analytics")
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return events.Start(gctx)
	})
	g.Go(func() error {
		slog.Info("analytics service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
