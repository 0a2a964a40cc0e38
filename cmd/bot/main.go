package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bags-buyback-bot/pkg/advisor"
	"bags-buyback-bot/pkg/api"
	"bags-buyback-bot/pkg/bot"
	"bags-buyback-bot/pkg/buyback"
	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/feecollector"
	"bags-buyback-bot/pkg/notifications"
	"bags-buyback-bot/pkg/solana"
)

func main() {
	logger := log.New(os.Stdout, "BUYBACK-BOT: ", log.LstdFlags)
	logger.Println("Starting Bags Buyback Bot...")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Create the wallet from the configured private key
	wallet, err := solana.NewWallet(cfg.WalletPrivateKey, cfg.SolanaRpcURL, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize wallet: %v", err)
	}

	logger.Printf("Configured for wallet: %s", wallet.Address())
	logger.Printf("Watching token: %s", cfg.TokenMint)
	logger.Printf("Buyback threshold: %v SOL, using %d%% of available balance", cfg.BuybackThresholdSol, cfg.BuybackPercentage)
	logger.Printf("Minimum buyback interval: %s, check interval: %s", cfg.MinBuybackInterval, cfg.CheckInterval)

	// Create Telegram notification client
	telegramClient := notifications.NewTelegramClient(
		cfg.TelegramBotToken,
		cfg.TelegramChatID,
		cfg.EnableTelegram,
	)

	// Wire up the services
	bagsClient := api.NewBagsClient(cfg, logger)
	collector := feecollector.NewCollector(bagsClient, wallet, cfg, logger)
	executor := buyback.NewExecutor(bagsClient, wallet, cfg, logger)
	aiAdvisor := advisor.NewClient(cfg, logger)

	buybackBot := bot.New(collector, executor, aiAdvisor, wallet, telegramClient, cfg, logger)

	// Create a context that we can cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create a channel to listen for OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Best effort startup narrative; failures here must not stop the bot
	if status, err := collector.GetStatus(ctx); err != nil {
		logger.Printf("Skipping startup analysis: %v", err)
	} else if balance, err := wallet.Balance(ctx); err != nil {
		logger.Printf("Skipping startup analysis: %v", err)
	} else {
		logger.Printf("Initial strategy analysis:\n%s", aiAdvisor.GetStrategyAdvice(ctx, &advisor.MarketContext{
			FeeStatus:     status,
			WalletBalance: balance,
		}))
	}

	telegramClient.SendWelcomeMessage(
		wallet.Address(),
		cfg.TokenMint,
		cfg.BuybackThresholdSol,
		cfg.BuybackPercentage,
		cfg.MinBuybackInterval,
		cfg.CheckInterval,
	)

	// Run the bot in a goroutine
	go buybackBot.Run(ctx)

	// Wait for termination signal
	<-sigChan
	logger.Println("Received termination signal. Shutting down...")
	cancel()

	time.Sleep(2 * time.Second) // Give in-flight work time to finish
}
