package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	"github.com/user/event-pipeline/internal/adapter/metrics"
	jsonlstore "github.com/user/event-pipeline/internal/adapter/store/jsonl"
	pgstore "github.com/user/event-pipeline/internal/adapter/store/postgres"
	redisstore "github.com/user/event-pipeline/internal/adapter/store/redis"
	"github.com/user/event-pipeline/internal/clean"
	"github.com/user/event-pipeline/internal/domain"
	"github.com/user/event-pipeline/internal/engine"
	"github.com/user/event-pipeline/internal/pkg/config"
	"github.com/user/event-pipeline/internal/pkg/logger"
	"github.com/user/event-pipeline/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting cleaning run", "raw_store", cfg.RawStore, "clean_sink", cfg.CleanSink)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	source, err := newRawStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize raw event source", "error", err)
		os.Exit(1)
	}

	sink, cleanup, err := newCleanSink(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize cleaned record sink", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	pipeline := clean.New(engine.New(cfg.EngineWorkers), cfg.EnginePartitions, log)
	uc := usecase.NewCleanEventsUseCase(source, sink, pipeline, log, m)

	stats, err := uc.Run(ctx)
	if err != nil {
		log.Error("cleaning run failed", "error", err)
		os.Exit(1)
	}

	log.Info("cleaning run complete",
		"rows_read", stats.RowsRead,
		"rows_valid", stats.RowsValid,
		"rows_output", stats.RowsOutput,
	)
}

func newRawStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.RawEventStore, error) {
	switch cfg.RawStore {
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return redisstore.NewRawEventStore(client, cfg.RedisStreamKey, log), nil
	default:
		return jsonlstore.NewRawEventStore(cfg.RawEventsPath, log)
	}
}

func newCleanSink(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.CleanedRecordStore, func(), error) {
	noop := func() {}
	switch cfg.CleanSink {
	case config.StorePostgres:
		if cfg.PostgresURL == "" {
			return nil, noop, errors.New("CLEAN_SINK=postgres requires POSTGRES_URL")
		}
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, noop, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return pgstore.NewCleanedRecordStore(db, log), func() { db.Close() }, nil
	default:
		store, err := jsonlstore.NewCleanedRecordStore(cfg.CleanEventsPath, log)
		return store, noop, err
	}
}

func serveMetrics(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("starting metrics server", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server failed", "error", err)
	}
}
