package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"bags-buyback-bot/pkg/advisor"
	"bags-buyback-bot/pkg/api"
	"bags-buyback-bot/pkg/buyback"
	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/feecollector"
	"bags-buyback-bot/pkg/solana"
)

// One-shot buyback: run the gate, get a quote, ask the advisor and execute.
// An optional argument overrides the SOL amount.
func main() {
	logger := log.New(os.Stdout, "BUYBACK: ", log.LstdFlags)

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
	executor := buyback.NewExecutor(bagsClient, wallet, cfg, logger)
	aiAdvisor := advisor.NewClient(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	balance, err := wallet.Balance(ctx)
	if err != nil {
		logger.Fatalf("Failed to read wallet balance: %v", err)
	}
	logger.Printf("Balance: %.4f SOL", balance)

	// A one-shot run carries no history, so only the funds gate applies
	check := executor.ShouldExecute(balance-buyback.FeeReserveSol, time.Time{})
	if !check.Should {
		logger.Fatalf("Buyback conditions not met: %s", check.Reason)
	}

	amount := check.SuggestedAmount
	if len(os.Args) > 1 {
		amount, err = strconv.ParseFloat(os.Args[1], 64)
		if err != nil {
			logger.Fatalf("Invalid amount %q: %v", os.Args[1], err)
		}
	}

	quote, err := executor.Quote(ctx, amount)
	if err != nil {
		logger.Fatalf("Failed to get quote: %v", err)
	}
	logger.Printf("Quote: %.4f SOL -> %.2f tokens (price impact: %s%%)",
		quote.InputAmountSol, quote.OutputAmountTokens, quote.PriceImpact)

	status, err := collector.GetStatus(ctx)
	if err != nil {
		logger.Fatalf("Failed to fetch fee status: %v", err)
	}

	logger.Println("Consulting AI advisor...")
	advice := aiAdvisor.GetBuybackAdvice(ctx, &advisor.MarketContext{
		FeeStatus:     status,
		BuybackQuote:  quote,
		WalletBalance: balance,
	})
	logger.Printf("AI decision: shouldBuyback=%v, confidence=%.0f%%", advice.ShouldBuyback, advice.Confidence)
	logger.Printf("Reasoning: %s", advice.Reasoning)
	for _, warning := range advice.Warnings {
		logger.Printf("Warning: %s", warning)
	}
	if !advice.ShouldBuyback {
		logger.Fatalf("AI recommends against this buyback")
	}
	if advice.SuggestedAmount > 0 && len(os.Args) <= 1 {
		amount = advice.SuggestedAmount
	}

	result := executor.Execute(ctx, amount)
	if !result.Success {
		logger.Fatalf("Buyback failed: %s", result.Error)
	}

	logger.Printf("Buyback successful! Spent %.4f SOL for %.2f tokens", result.InputAmount, result.OutputAmount)
	logger.Printf("  https://solscan.io/tx/%s", result.Transaction)
}
