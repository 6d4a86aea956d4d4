package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/YSC-hain/Message-Aggregator/internal/analyzer"
	"github.com/YSC-hain/Message-Aggregator/internal/archive"
	"github.com/YSC-hain/Message-Aggregator/internal/cleanup"
	"github.com/YSC-hain/Message-Aggregator/internal/collector"
	"github.com/YSC-hain/Message-Aggregator/internal/config"
	"github.com/YSC-hain/Message-Aggregator/internal/database"
	"github.com/YSC-hain/Message-Aggregator/internal/dispatcher"
	"github.com/YSC-hain/Message-Aggregator/internal/llm"
	"github.com/YSC-hain/Message-Aggregator/internal/logger"
	"github.com/YSC-hain/Message-Aggregator/internal/nats"
	"github.com/YSC-hain/Message-Aggregator/internal/pipeline"
	"github.com/YSC-hain/Message-Aggregator/internal/publisher"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
	"github.com/YSC-hain/Message-Aggregator/internal/worker"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting message aggregator")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Load channel configuration
	channels, err := config.LoadChannels(cfg.ChannelsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load channels file")
	}
	if len(channels.Channels) == 0 {
		log.Fatal().Msg("channels file lists no channels")
	}

	// 5. Connect to database
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	store, err := archive.NewStore(db.GORM)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init archive store")
	}

	// 6. Connect to NATS (optional)
	var pub pipeline.EventPublisher
	if cfg.NatsURL != "" {
		nc, err := nats.New(ctx, cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, event publishing disabled")
		} else {
			defer nc.Close()
			p, err := publisher.New(ctx, nc)
			if err != nil {
				log.Warn().Err(err).Msg("failed to set up digest stream, event publishing disabled")
			} else {
				pub = p
			}
		}
	}

	// 7. Initialize telegram
	if cfg.TGApiID == 0 || cfg.TGApiHash == "" {
		log.Fatal().Msg("TG_API_ID and TG_API_HASH are required")
	}

	tgManager := telegram.NewManager(cfg, db.GORM)
	if err := tgManager.Init(ctx); err != nil {
		log.Error().Err(err).Msg("telegram manager init failed")
	}
	if tgManager.GetStatus() != telegram.StatusReady {
		log.Warn().Msg("telegram client not authorized; run tg-auth to log in")
	}

	tgClient := telegram.NewClient(tgManager)
	defer tgClient.Close()

	// 8. Build the pipeline
	svc := collector.NewServiceFromConfig(tgClient, cfg)

	var an pipeline.Analyzer
	if cfg.LLMAPIKey != "" {
		llmClient := llm.NewClient(llm.Config{
			BaseURL:     cfg.LLMBaseURL,
			Model:       cfg.LLMModel,
			APIKey:      cfg.LLMAPIKey,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: float32(cfg.LLMTemperature),
			Timeout:     time.Duration(cfg.LLMTimeoutSec) * time.Second,
		})
		an = analyzer.New(llmClient, channels.AnalysisPrompt)
	} else {
		log.Warn().Msg("LLM_API_KEY not set, running collect-only")
	}

	pipe := pipeline.New(
		svc,
		an,
		store,
		pub,
		dispatcher.New(tgClient),
		tgClient,
		channels,
	)
	runManager := collector.NewRunManager(pipe)

	// 9. HTTP surface
	router := collector.NewRouter(collector.NewHandler(runManager))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// 10. Background schedule: collection and cleanup
	cleaner := cleanup.New(channels.Cleanup)

	loop := worker.New(
		worker.Task{
			Name:       "collection",
			Interval:   cfg.CollectionInterval,
			RunOnStart: true,
			Run: func(ctx context.Context) {
				if _, err := runManager.Start(ctx); err != nil {
					log.Warn().Err(err).Msg("scheduled collection not started")
				}
			},
		},
		worker.Task{
			Name:     "cleanup",
			Interval: cfg.CleanupInterval,
			Run:      cleaner.Run,
		},
	)

	_ = loop.Run(ctx)

	// 11. Shutdown
	log.Info().Msg("shutting down services...")
	runManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	log.Info().Msg("shutdown complete")
}
