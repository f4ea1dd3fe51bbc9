package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ledgerdash/internal/amqp"
	"ledgerdash/internal/cache"
	"ledgerdash/internal/charts"
	"ledgerdash/internal/config"
	apphttp "ledgerdash/internal/http"
	"ledgerdash/internal/ledger"
	"ledgerdash/internal/log"
	"ledgerdash/internal/service"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.NewFromSettings(cfg.LogLevel, cfg.LogFormat)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	client := ledger.NewClient(cfg.LedgerAPIURL,
		ledger.WithHTTPClient(&http.Client{Timeout: cfg.LedgerTimeout}))

	reports := cache.NewLRUCache[service.PeriodReport](cfg.CacheSize, cfg.CacheTTL)
	dashboard := service.NewDashboard(client, client, service.WithReportCache(reports))

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register(dashboard.ReportCache())
	caches.StartCleanup(cfg.CacheCleanupInterval)
	defer caches.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, dashboard, charts.NewGenerator(), logger, apphttp.Options{
		RequestsPerMinute: cfg.RequestsPerMinute,
		TopN:              cfg.TopN,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting ledgerdash server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// The capture pipeline is optional: without AMQP the dashboard
	// still serves, relying on cache TTL for freshness.
	if cfg.AMQPURL != "" {
		events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer events.Close()

		group.Go(func() error {
			err := events.ConsumeTransactionEvents(ctx, func(evt *amqp.TransactionEvent) error {
				dashboard.Invalidate(evt.Subject, evt.Month, evt.Year)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		logger.Info("Consuming transaction events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - cache invalidation by TTL only")
	}

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
