// Command tg-auth logs the aggregator account in via Telegram's QR login
// and stores the session in the database used by the aggregator daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mdp/qrterminal/v3"

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

	if err := logger.Init(cfg.LogLevel, ""); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()

	if cfg.TGApiID == 0 || cfg.TGApiHash == "" {
		fmt.Println("TG_API_ID and TG_API_HASH are required (get them at https://my.telegram.org)")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	manager := telegram.NewManager(cfg, db.GORM)

	fmt.Println("=== telegram qr auth ===")
	fmt.Println("open Telegram on your phone: Settings > Devices > Link Desktop Device")
	fmt.Println()

	err = manager.StartQR(ctx, func(url string) {
		fmt.Println("scan this QR code:")
		qrterminal.GenerateWithConfig(url, qrterminal.Config{
			Level:     qrterminal.M,
			Writer:    os.Stdout,
			BlackChar: qrterminal.BLACK,
			WhiteChar: qrterminal.WHITE,
			QuietZone: 1,
		})
		fmt.Println()
	})
	if err != nil {
		if err == context.Canceled {
			fmt.Println("login canceled")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("QR login failed")
	}

	defer manager.Stop()

	fmt.Println("✓ login successful, session stored in the database")
	fmt.Println("the aggregator will pick it up on next start")
}
