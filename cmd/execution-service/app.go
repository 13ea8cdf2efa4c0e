package main

import (
	"context"
	"fmt"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/repository"
	"golang-stock-signal/internal/executor/service"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/metrics"
	"golang-stock-signal/pkg/postgres"
	"golang-stock-signal/pkg/redis"
	"golang-stock-signal/pkg/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/genai"
)

// app holds everything the serve and run commands share.
type app struct {
	db              *postgres.DB
	redisClient     *redis.Client
	runRepo         repository.PipelineRunRepository
	recommendations repository.RecommendationRepository
	publisher       repository.EventPublisher
	notifier        telegram.Notifier
	pipeline        service.Pipeline
}

func (a *app) Close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// buildApp connects the stores and assembles the pipeline. Redis is only dialled when
// withRedis is set or the snapshot cache lives there.
func buildApp(ctx context.Context, cfg *config.Config, appLogger *logger.Logger, withRedis bool) (*app, error) {
	a := &app{}

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db

	// Initialize Redis
	if withRedis || cfg.Cache.Backend == "redis" {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.redisClient = redisClient
	}

	// Initialize repositories
	priceRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	fundamentalRepo := repository.NewFundamentalRepository(cfg, appLogger)
	a.recommendations = repository.NewRecommendationRepository(db.DB)
	a.runRepo = repository.NewPipelineRunRepository(db.DB)

	var watchlistRepo repository.WatchlistRepository
	switch cfg.Watchlist.Source {
	case "tradingview":
		watchlistRepo = repository.NewTradingViewRepository(cfg, appLogger)
	case "database":
		watchlistRepo = repository.NewStocksRepository(db.DB)
	default:
		a.Close()
		return nil, fmt.Errorf("invalid watchlist source %q", cfg.Watchlist.Source)
	}

	var snapshotCache repository.SnapshotCache
	switch cfg.Cache.Backend {
	case "redis":
		snapshotCache = repository.NewRedisSnapshotCache(a.redisClient.Client)
	default:
		snapshotCache = repository.NewMemorySnapshotCache(cfg.Classifier.SnapshotTTL, cfg.Cache.CleanupInterval)
	}

	// Initialize AI provider
	var narrativeRepo repository.NarrativeRepository
	if cfg.Enrichment.Enabled && cfg.Gemini.APIKey != "" {
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		narrativeRepo, err = repository.NewGeminiNarrativeRepository(cfg, appLogger, genAiClient)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize narrative repository: %w", err)
		}
	} else if cfg.Enrichment.Enabled {
		appLogger.Warn("Enrichment enabled without a Gemini API key, BUY signals will not be confirmed under the dual policy")
	}

	var newsRepo repository.NewsRepository
	maxHeadlines := 0
	if cfg.News.Enabled && cfg.News.FeedURL != "" {
		newsRepo = repository.NewRSSNewsRepository(cfg, appLogger)
		maxHeadlines = cfg.News.MaxItems
	}

	a.notifier = telegram.NewNoopNotifier()
	if cfg.Telegram.BotToken != "" {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		a.notifier = notifier
	}

	a.publisher = repository.NewNoopPublisher()
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		a.publisher = repository.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	horizon, err := service.HorizonByName(cfg.Pipeline.Horizon)
	if err != nil {
		a.Close()
		return nil, err
	}

	pipelineMetrics := metrics.NewPipeline(prometheus.DefaultRegisterer)

	// Initialize services
	enricher := service.NewEnrichmentAdapter(narrativeRepo, newsRepo, service.EnrichmentOptions{
		Timeout:       cfg.Enrichment.Timeout,
		DispatchDelay: cfg.Enrichment.DispatchDelay,
		MaxConcurrent: cfg.Enrichment.MaxConcurrent,
		MaxHeadlines:  maxHeadlines,
	}, pipelineMetrics, appLogger)

	a.pipeline = service.NewPipeline(service.PipelineOptions{
		MaxSymbolsPerRun:   cfg.Pipeline.MaxSymbolsPerRun,
		CapPolicy:          cfg.Pipeline.CapPolicy,
		Workers:            cfg.Pipeline.Workers,
		RunTimeout:         cfg.Pipeline.RunTimeout,
		UnitTimeout:        cfg.Pipeline.UnitTimeout,
		ConfirmationPolicy: cfg.Pipeline.ConfirmationPolicy,
		CallsPerSymbol:     cfg.Pipeline.CallsPerSymbol,
		LookbackDays:       cfg.Pipeline.LookbackDays,
		MinCombinedScore:   cfg.Classifier.MinCombinedScore,
		EnrichmentEnabled:  cfg.Enrichment.Enabled,
		NotifyTelegram:     cfg.Pipeline.NotifyTelegram,
	}, service.PipelineDependencies{
		Prices:          priceRepo,
		Ratios:          fundamentalRepo,
		Watchlist:       watchlistRepo,
		Recommendations: a.recommendations,
		Runs:            a.runRepo,
		Snapshots:       service.NewSnapshotService(snapshotCache, cfg.Classifier.SnapshotTTL, appLogger),
		Classifier:      service.NewClassifier(cfg.Classifier.MAScoring),
		Detector:        service.NewGoldenCrossDetector(horizon),
		Enricher:        enricher,
		Notifier:        a.notifier,
		Publisher:       a.publisher,
		Metrics:         pipelineMetrics,
	}, appLogger)

	return a, nil
}
