package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"commentpulse/internal/analysis"
	"commentpulse/internal/broadcast"
	"commentpulse/internal/config"
	"commentpulse/internal/publisher"
	"commentpulse/internal/scheduler"
	"commentpulse/internal/service"
	"commentpulse/internal/source/youtube"
	"commentpulse/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize stores
	channelStore := postgres.NewChannelStore(db)
	videoStore := postgres.NewVideoStore(db)
	commentStore := postgres.NewCommentStore(db)
	commenterStore := postgres.NewCommenterStore(db)
	logStore := postgres.NewLogStore(db)

	// Optional AMQP forwarder for progress events
	var forwarder broadcast.Forwarder
	var rabbitMQ *publisher.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err = publisher.NewRabbitMQ(publisher.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		forwarder = rabbitMQ
	}

	broadcaster := broadcast.New(logStore, forwarder, cfg.Sync.EventBufferSize, logger)

	// Initialize YouTube source
	ytSource := youtube.New(youtube.Config{
		BaseURL:        cfg.YouTube.BaseURL,
		APIKey:         cfg.YouTube.APIKey,
		PageSize:       cfg.YouTube.PageSize,
		Timeout:        cfg.YouTube.Timeout,
		MaxAttempts:    cfg.YouTube.Retry.MaxAttempts,
		InitialBackoff: cfg.YouTube.Retry.InitialBackoff,
		MaxBackoff:     cfg.YouTube.Retry.MaxBackoff,
	}, logger)

	syncService := service.NewSyncService(
		ytSource,
		channelStore,
		videoStore,
		commentStore,
		commenterStore,
		analysis.New(),
		broadcaster,
		logger,
		cfg.Sync,
	)

	sched := scheduler.NewScheduler(syncService, channelStore, cfg.Sync.Interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting comment syncer",
		"interval", cfg.Sync.Interval,
		"batch_size", cfg.Sync.BatchSize,
		"lookback_days", cfg.Sync.LookbackDays,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
