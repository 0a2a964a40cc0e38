package main

import (
	"context"
	"log"
	"os"
	"time"

	"bags-buyback-bot/pkg/api"
	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/feecollector"
	"bags-buyback-bot/pkg/solana"
)

// One-shot fee collection: show the current fee status and claim when the
// threshold is met.
func main() {
	logger := log.New(os.Stdout, "COLLECT: ", log.LstdFlags)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	wallet, err := solana.NewWallet(cfg.WalletPrivateKey, cfg.SolanaRpcURL, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize wallet: %v", err)
	}
	logger.Printf("Wallet: %s", wallet.Address())

	bagsClient := api.NewBagsClient(cfg, logger)
	collector := feecollector.NewCollector(bagsClient, wallet, cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	status, err := collector.GetStatus(ctx)
	if err != nil {
		logger.Fatalf("Failed to fetch fee status: %v", err)
	}

	logger.Printf("Token: %s", status.TokenMint)
	logger.Printf("Lifetime fees collected: %.4f SOL ($%.2f)", status.LifetimeFeesCollected, status.LifetimeFeesCollectedUsd)
	logger.Printf("Claimable now: %.4f SOL ($%.2f) across %d position(s)",
		status.TotalClaimable, status.TotalClaimableUsd, len(status.ClaimablePositions))
	for _, sharer := range status.FeeSharers {
		logger.Printf("Fee sharer %s: %v%% (claimed: %s)", sharer.Username, float64(sharer.RoyaltyBps)/100, sharer.TotalClaimed)
	}

	if status.TotalClaimable < cfg.BuybackThresholdSol {
		logger.Printf("Below threshold (%v SOL), nothing to do", cfg.BuybackThresholdSol)
		return
	}

	result := collector.Collect(ctx)
	if !result.Success {
		logger.Fatalf("Collection failed: %v", result.Errors)
	}

	logger.Printf("Collected %.4f SOL ($%.2f) in %d transaction(s)",
		result.TotalClaimed, result.TotalClaimedUsd, len(result.Transactions))
	for _, signature := range result.Transactions {
		logger.Printf("  https://solscan.io/tx/%s", signature)
	}
	if len(result.Errors) > 0 {
		logger.Printf("%d claim(s) failed: %v", len(result.Errors), result.Errors)
	}
}
