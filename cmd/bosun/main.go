package main

import (
	"context"
	"time"

	"frameworks/api_bosun/internal/collect"
	bosunconfig "frameworks/api_bosun/internal/config"
	"frameworks/api_bosun/internal/events"
	"frameworks/api_bosun/internal/handlers"
	"frameworks/api_bosun/internal/schedule"
	"frameworks/api_bosun/internal/summary"
	"frameworks/api_bosun/internal/threads"
	slackclient "frameworks/pkg/clients/slack"
	"frameworks/pkg/config"
	"frameworks/pkg/database"
	"frameworks/pkg/llm"
	"frameworks/pkg/logging"
	"frameworks/pkg/monitoring"
	"frameworks/pkg/server"
	"frameworks/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("bosun")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Bosun (Weekly Crew Check-in API)")

	cfg := bosunconfig.LoadConfig()

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.DatabaseURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("bosun", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("bosun", version.Version, version.GitCommit)

	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL":    cfg.DatabaseURL,
		"SLACK_BOT_TOKEN": cfg.SlackBotToken,
	}))

	// Weekly job anchors; zone and hour problems are fatal at startup.
	collectionAt, err := schedule.NewWeeklyTime(time.Friday, cfg.CollectionHour, cfg.Timezone)
	if err != nil {
		logger.WithError(err).Fatal("Invalid collection schedule")
	}
	summariesAt, err := schedule.NewWeeklyTime(time.Monday, cfg.SummaryHour, cfg.Timezone)
	if err != nil {
		logger.WithError(err).Fatal("Invalid summary schedule")
	}

	// Messaging client
	var slackOpts []slackclient.Option
	if cfg.SlackAPIURL != "" {
		slackOpts = append(slackOpts, slackclient.WithBaseURL(cfg.SlackAPIURL))
	}
	slack := slackclient.NewClient(cfg.SlackBotToken, slackOpts...)

	// LLM provider for digest synthesis
	provider, err := llm.NewProvider(llm.Config{
		Provider:  cfg.LLMProvider,
		Model:     cfg.LLMModel,
		APIKey:    cfg.LLMAPIKey,
		APIURL:    cfg.LLMAPIURL,
		MaxTokens: cfg.LLMMaxTokens,
	})
	if err != nil {
		logger.WithError(err).Fatal("LLM provider not configured")
	}
	synthesizer := summary.NewLLMSynthesizer(provider, cfg.SynthesisTimeout)

	// Thread registry with cache warm
	registry := threads.NewRegistry(threads.NewStore(db), logger)
	if err := registry.LoadRecent(context.Background()); err != nil {
		logger.WithError(err).Warn("Thread registry cache warm failed - lookups fall back to the store")
	}

	collector := collect.NewCollector(collect.CollectorConfig{
		People:    collect.NewPeopleStore(db),
		Checkins:  collect.NewCheckinStore(db),
		Messenger: slack,
		Registry:  registry,
		Logger:    logger,
		SendDelay: cfg.SendDelay,
	})

	publisher := summary.NewPublisher(summary.PublisherConfig{
		Projects:    summary.NewProjectStore(db),
		Updates:     summary.NewUpdateStore(db),
		Synthesizer: synthesizer,
		Poster:      slack,
		Registry:    registry,
		Logger:      logger,
	})

	schedulerConfig := schedule.SchedulerConfig{
		Collection: collectionAt,
		Summaries:  summariesAt,
		Collector:  collector,
		Publisher:  publisher,
		Logger:     logger,
	}

	if len(cfg.KafkaBrokers) > 0 {
		cycleEvents, err := events.NewPublisher(events.PublisherConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.CycleEventsTopic,
			Source:  "bosun",
			Logger:  logger,
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to create cycle event publisher - cycle events disabled")
		} else {
			schedulerConfig.Events = cycleEvents
			healthChecker.AddCheck("kafka", monitoring.PingHealthCheck("kafka", cycleEvents))
			defer func() { _ = cycleEvents.Close() }()
		}
	} else {
		logger.Warn("KAFKA_BROKERS not set - cycle events disabled")
	}

	scheduler := schedule.NewScheduler(schedulerConfig)
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router with unified monitoring (health/metrics only)
	router := server.SetupServiceRouter(logger, "bosun", healthChecker, metricsCollector)
	apiGroup := router.Group("/api/bosun")
	handlers.RegisterRoutes(apiGroup, &handlers.Handler{
		Scheduler: scheduler,
		Threads:   registry,
		Reader:    collect.NewReader(registry),
		Logger:    logger,
	})

	// Start HTTP server with graceful shutdown
	serverConfig := server.DefaultConfig("bosun", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
