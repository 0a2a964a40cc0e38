package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"bags-buyback-bot/pkg/advisor"
	"bags-buyback-bot/pkg/api"
	"bags-buyback-bot/pkg/buyback"
	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/feecollector"
	"bags-buyback-bot/pkg/solana"
)

// One-shot analytics report: fee status, a hypothetical buyback quote and
// an AI-written strategy analysis.
func main() {
	logger := log.New(os.Stdout, "ANALYTICS: ", log.LstdFlags)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	wallet, err := solana.NewWallet(cfg.WalletPrivateKey, cfg.SolanaRpcURL, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize wallet: %v", err)
	}

	bagsClient := api.NewBagsClient(cfg, logger)
	collector := feecollector.NewCollector(bagsClient, wallet, cfg, logger)
	executor := buyback.NewExecutor(bagsClient, wallet, cfg, logger)
	aiAdvisor := advisor.NewClient(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	status, err := collector.GetStatus(ctx)
	if err != nil {
		logger.Fatalf("Failed to fetch fee status: %v", err)
	}

	balance, err := wallet.Balance(ctx)
	if err != nil {
		logger.Fatalf("Failed to read wallet balance: %v", err)
	}

	fmt.Println("=== Fee Status ===")
	fmt.Printf("Token:            %s\n", status.TokenMint)
	fmt.Printf("Wallet:           %s\n", wallet.Address())
	fmt.Printf("Wallet balance:   %.4f SOL\n", balance)
	fmt.Printf("Lifetime fees:    %.4f SOL ($%.2f)\n", status.LifetimeFeesCollected, status.LifetimeFeesCollectedUsd)
	fmt.Printf("Claimable now:    %.4f SOL ($%.2f) in %d position(s)\n",
		status.TotalClaimable, status.TotalClaimableUsd, len(status.ClaimablePositions))
	for _, sharer := range status.FeeSharers {
		fmt.Printf("Fee sharer:       %s %v%% (claimed: %s)\n",
			sharer.Username, float64(sharer.RoyaltyBps)/100, sharer.TotalClaimed)
	}

	shareWallets, err := bagsClient.GetFeeShareWallets(ctx, cfg.TokenMint)
	if err != nil {
		logger.Printf("Could not fetch fee share wallets: %v", err)
	} else {
		fmt.Println("\n=== Fee Share Wallets ===")
		for _, sw := range shareWallets {
			role := "sharer"
			if sw.IsCreator {
				role = "creator"
			}
			fmt.Printf("%-8s %s (%s) %v%%\n", role, sw.Wallet, sw.Username, float64(sw.RoyaltyBps)/100)
		}
	}

	var quote *buyback.Quote
	hypothetical := executor.CalculateAmount(balance - buyback.FeeReserveSol)
	if hypothetical > 0 {
		quote, err = executor.Quote(ctx, hypothetical)
		if err != nil {
			logger.Printf("Could not get quote for %.4f SOL: %v", hypothetical, err)
		} else {
			fmt.Println("\n=== Hypothetical Buyback ===")
			fmt.Printf("Input:            %.4f SOL\n", quote.InputAmountSol)
			fmt.Printf("Output:           %.2f tokens\n", quote.OutputAmountTokens)
			fmt.Printf("Price impact:     %s%%\n", quote.PriceImpact)
		}
	}

	fmt.Println("\n=== Strategy Analysis ===")
	analysis := aiAdvisor.GetStrategyAdvice(ctx, &advisor.MarketContext{
		FeeStatus:     status,
		BuybackQuote:  quote,
		WalletBalance: balance,
	})
	fmt.Println(analysis)
}
