// Command analyzer-worker analyses documents queued on the analyze-requests
// topic and publishes an event per analysis to analysis-complete.
//
// Usage:
//
//	go run ./cmd/analyzer-worker [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/consumer"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/service"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analytics/collector"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/app"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	batchSize := flag.Int("batch-size", 100, "analysis events per published batch")
	flushInterval := flag.Duration("flush-interval", 2*time.Second, "longest wait before a partial batch is published")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if !cfg.Kafka.Enabled {
		slog.Error("analyzer worker needs kafka.enabled")
		os.Exit(1)
	}
	slog.Info("starting analyzer worker",
		"brokers", cfg.Kafka.Brokers,
		"topic", cfg.Kafka.Topics.AnalyzeRequests,
		"group", cfg.Kafka.ConsumerGroup,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *batchSize, *flushInterval); err != nil {
		slog.Error("analyzer worker failed", "error", err)
		os.Exit(1)
	}
	slog.Info("analyzer worker stopped")
}

func run(ctx context.Context, cfg *config.Config, batchSize int, flushInterval time.Duration) error {
	m := metrics.New()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalysisComplete)
	defer producer.Close()
	events := collector.NewBatchCollector(producer, batchSize, flushInterval, func(n int) {
		m.EventsDroppedTotal.Add(float64(n))
	})
	flushCtx, cancelFlush := context.WithCancel(ctx)
	events.Start(flushCtx)
	defer func() {
		cancelFlush()
		events.Close()
	}()

	a, err := app.Open(ctx, cfg, "analyzer-worker", m, service.WithEvents(events))
	if err != nil {
		return err
	}
	defer a.Close()
	a.Start(ctx)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, "analyzer-worker")
		defer func() {
			shutdownCtx, cancel := a.ShutdownContext()
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	requests := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyzeRequests, consumer.HandleMessage(a.Service, m))
	defer requests.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return requests.Start(gctx)
	})
	return g.Wait()
}
