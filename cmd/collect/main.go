// Command collect performs a single collection pass and prints run
// statistics. Useful for cron setups and debugging watermark state.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/YSC-hain/Message-Aggregator/internal/collector"
	"github.com/YSC-hain/Message-Aggregator/internal/config"
	"github.com/YSC-hain/Message-Aggregator/internal/database"
	"github.com/YSC-hain/Message-Aggregator/internal/logger"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()

	channels, err := config.LoadChannels(cfg.ChannelsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load channels file")
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	tgManager := telegram.NewManager(cfg, db.GORM)
	if err := tgManager.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("telegram manager init failed")
	}
	if tgManager.GetStatus() != telegram.StatusReady {
		log.Fatal().Msg("telegram client not authorized; run tg-auth first")
	}

	tgClient := telegram.NewClient(tgManager)
	defer tgClient.Close()

	svc := collector.NewServiceFromConfig(tgClient, cfg)

	result, err := svc.CollectAll(ctx, channels.Channels)
	if err != nil {
		log.Error().Err(err).Msg("collection run failed")
		os.Exit(1)
	}

	fmt.Printf("channels requested: %d\n", result.ChannelsRequested)
	fmt.Printf("channels collected: %d\n", result.ChannelsCollected)
	if len(result.FailedChannels) > 0 {
		fmt.Printf("channels failed:    %v\n", result.FailedChannels)
	}
	fmt.Printf("messages:           %d\n", len(result.Corpus))
	fmt.Printf("took:               %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
}
