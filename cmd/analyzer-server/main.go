// Command analyzer-server serves the analysis HTTP API.
//
// Reports are persisted to PostgreSQL and cached in Redis when those are
// enabled; completed analyses are aggregated in process and, with Kafka
// enabled, published to the analysis-complete topic. With server.rpcPort
// set the service is also reachable over the internal RPC protocol.
//
// Usage:
//
//	go run ./cmd/analyzer-server [-config configs/development.yaml]
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

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/handler"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/remote"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/service"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/app"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/auth/apikey"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/router"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/rpc"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analyzer server", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("analyzer server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("analyzer server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	m := metrics.New()
	agg := analytics.NewAggregator()
	sinks := []service.EventSink{agg}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalysisComplete)
		defer producer.Close()
		collector := analytics.NewCollector(producer, 10000, m.EventsDroppedTotal.Inc)
		collector.Start(ctx)
		defer collector.Close()
		sinks = append(sinks, collector)
		slog.Info("analysis events published", "topic", cfg.Kafka.Topics.AnalysisComplete)
	}

	a, err := app.Open(ctx, cfg, "analyzer-server", m, service.WithEvents(sinks...))
	if err != nil {
		return err
	}
	defer a.Close()
	a.Start(ctx)

	var snapshots analytics.SnapshotLister
	var keys apikey.Validator
	if a.DB != nil {
		snapshots = aggregator.NewStore(a.DB)
	}
	if cfg.Server.AuthEnabled {
		keyStore := apikey.NewStore(a.DB)
		if err := keyStore.Migrate(ctx); err != nil {
			return err
		}
		keys = keyStore
		slog.Info("api key authentication enabled")
	}

	limiter := ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateWindow)
	limiter.StartCleanup(ctx, cfg.Server.RateWindow)

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router.New(router.Deps{
			Analysis:       handler.New(a.Service, cfg.Analyzer.MaxDocumentBytes),
			Analytics:      analytics.NewHandler(agg, snapshots),
			Health:         a.Health,
			Keys:           keys,
			Limiter:        limiter,
			Metrics:        m,
			CORS:           middleware.DefaultCORSConfig(),
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, "analyzer-server")
		defer func() {
			shutdownCtx, cancel := a.ShutdownContext()
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("analyzer server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	var rpcServer *rpc.Server
	if cfg.Server.RPCPort > 0 {
		rpcServer = rpc.NewServer()
		remote.Register(rpcServer, a.Service)
		g.Go(func() error {
			return rpcServer.Serve(fmt.Sprintf(":%d", cfg.Server.RPCPort))
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		if rpcServer != nil {
			rpcServer.Stop()
		}
		shutdownCtx, cancel := a.ShutdownContext()
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
