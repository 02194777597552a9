package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/user/event-pipeline/internal/adapter/metrics"
	jsonlstore "github.com/user/event-pipeline/internal/adapter/store/jsonl"
	redisstore "github.com/user/event-pipeline/internal/adapter/store/redis"
	"github.com/user/event-pipeline/internal/domain"
	"github.com/user/event-pipeline/internal/pkg/config"
	"github.com/user/event-pipeline/internal/pkg/logger"
	"github.com/user/event-pipeline/internal/simulate"
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
	log.Info("starting event generation run", "start_date", cfg.StartDate, "days", cfg.NumDays, "users", cfg.NumUsers, "seed", cfg.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	store, err := newRawStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize raw event store", "error", err)
		os.Exit(1)
	}

	startDate, err := cfg.StartDay()
	if err != nil {
		log.Error("invalid start date", "error", err)
		os.Exit(1)
	}

	uc := usecase.NewGenerateEventsUseCase(store, log, m, usecase.GenerateConfig{
		StartDate:      startDate,
		NumDays:        cfg.NumDays,
		Seed:           cfg.Seed,
		CorruptionRate: cfg.CorruptionRate,
		DuplicateRate:  cfg.DuplicateRate,
		Simulation: simulate.Config{
			NumUsers:         cfg.NumUsers,
			SignupRate:       cfg.SignupRate,
			DailyActiveRate:  cfg.DailyActiveRate,
			SessionsMin:      cfg.SessionsMin,
			SessionsMax:      cfg.SessionsMax,
			FeatureEventsMin: cfg.FeatureEventsMin,
			FeatureEventsMax: cfg.FeatureEventsMax,
			PurchaseRate:     cfg.PurchaseRate,
		},
	})

	total, err := uc.Run(ctx)
	if err != nil {
		log.Error("generation run failed", "error", err)
		os.Exit(1)
	}

	log.Info("generation run complete", "events", total)
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

func serveMetrics(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("starting metrics server", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server failed", "error", err)
	}
}
