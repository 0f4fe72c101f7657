package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BenSmith123/crypto-analyser/internal/config"
	"github.com/BenSmith123/crypto-analyser/internal/engine"
	"github.com/BenSmith123/crypto-analyser/internal/exchange"
	"github.com/BenSmith123/crypto-analyser/internal/notify"
	"github.com/BenSmith123/crypto-analyser/internal/orchestrator"
	"github.com/BenSmith123/crypto-analyser/internal/runlog"
	"github.com/BenSmith123/crypto-analyser/internal/storage"
	"github.com/BenSmith123/crypto-analyser/pkg/utils"
)

const version = "v2.0.0"

// Процесс рассчитан на запуск по расписанию: один проход и выход.
// Код выхода отличен от нуля, если проход не состоялся
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting crypto-analyser %s", version)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %s: %w", cfg.Timezone, err)
	}

	store, err := storage.NewPostgresStorage(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer store.Close()

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.LogChatID, cfg.Telegram.AlertChatID, logger)
	if err != nil {
		return fmt.Errorf("failed to init notifier: %w", err)
	}

	client := exchange.NewCryptoClient(cfg.Crypto.APIKey, cfg.Crypto.APISecret, cfg.Crypto.BaseURL, cfg.Crypto.TradingEnabled, logger)

	runLog := runlog.New()

	trader := engine.NewTrader(client, client, client, store, runLog, logger,
		func(message string) { notifier.Send(message, true) },
		location)

	runner := orchestrator.NewRunner(store, trader, notifier, runLog, logger, version)

	return runner.RunOnce(cfg.ConfigID)
}
