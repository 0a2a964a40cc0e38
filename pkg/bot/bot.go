package bot

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"bags-buyback-bot/pkg/advisor"
	"bags-buyback-bot/pkg/buyback"
	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/feecollector"
)

// maxRecentBuybacks bounds the history ring fed to the advisor
const maxRecentBuybacks = 10

// FeeCollector is the fee collection policy the orchestrator drives
type FeeCollector interface {
	GetStatus(ctx context.Context) (*feecollector.FeeStatus, error)
	ShouldCollect(ctx context.Context) (*feecollector.CollectCheck, error)
	Collect(ctx context.Context) *feecollector.CollectionResult
}

// BuybackExecutor is the buyback policy the orchestrator drives
type BuybackExecutor interface {
	Quote(ctx context.Context, amountSol float64) (*buyback.Quote, error)
	ShouldExecute(availableSol float64, lastBuyback time.Time) buyback.Check
	Execute(ctx context.Context, amountSol float64) *buyback.Result
}

// Advisor provides the non-binding AI recommendation
type Advisor interface {
	GetBuybackAdvice(ctx context.Context, mc *advisor.MarketContext) *advisor.BuybackAdvice
}

// BalanceReader reads the bot wallet's SOL balance
type BalanceReader interface {
	Balance(ctx context.Context) (float64, error)
}

// Announcer publishes bot activity; failures are handled inside it
type Announcer interface {
	SendBuybackNotification(inputSol, outputTokens float64, priceImpact, signature string)
	SendFeesCollectedNotification(totalSol, totalUsd float64, txCount int)
}

// State is the bot's process-lifetime memory. It is not persisted and
// resets on restart.
type State struct {
	LastFeeCollectionTime time.Time
	LastBuybackTime       time.Time
	TotalFeesCollected    float64
	TotalBuybacks         int
	RecentBuybacks        []advisor.BuybackRecord
}

// Bot composes the fee collection and buyback policies into a repeating
// cycle
type Bot struct {
	collector FeeCollector
	executor  BuybackExecutor
	advisor   Advisor
	wallet    BalanceReader
	notifier  Announcer

	checkInterval time.Duration
	logger        *log.Logger

	state    State
	inFlight atomic.Bool
}

// New creates a new bot from its collaborators
func New(
	collector FeeCollector,
	executor BuybackExecutor,
	adv Advisor,
	wallet BalanceReader,
	notifier Announcer,
	cfg *config.Config,
	logger *log.Logger,
) *Bot {
	return &Bot{
		collector:     collector,
		executor:      executor,
		advisor:       adv,
		wallet:        wallet,
		notifier:      notifier,
		checkInterval: cfg.CheckInterval,
		logger:        logger,
	}
}

// State returns a snapshot of the bot's current state
func (b *Bot) State() State {
	snapshot := b.state
	snapshot.RecentBuybacks = append([]advisor.BuybackRecord(nil), b.state.RecentBuybacks...)
	return snapshot
}

// Run executes cycles on the configured interval until the context is
// cancelled. A tick is skipped while a previous cycle is still in flight,
// so cycles never overlap.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Printf("Bot running, checking every %s", b.checkInterval)

	b.tryRunCycle(ctx)

	ticker := time.NewTicker(b.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Println("Context cancelled, stopping bot...")
			return
		case <-ticker.C:
			if !b.tryRunCycle(ctx) {
				b.logger.Println("Previous cycle still running, skipping this tick")
			}
		}
	}
}

func (b *Bot) tryRunCycle(ctx context.Context) bool {
	if !b.inFlight.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer b.inFlight.Store(false)
		defer func() {
			if r := recover(); r != nil {
				b.logger.Printf("Cycle panicked: %v", r)
			}
		}()
		b.RunCycle(ctx)
	}()
	return true
}

// RunCycle executes one full check-collect-buyback cycle. Every failure is
// logged and ends the cycle; nothing here stops the process.
func (b *Bot) RunCycle(ctx context.Context) {
	b.logger.Printf("Bot cycle - %s", time.Now().UTC().Format(time.RFC3339))

	// Step 1: check and collect fees. Collection failure is not fatal to
	// the rest of the cycle.
	feeCheck, err := b.collector.ShouldCollect(ctx)
	if err != nil {
		b.logger.Printf("Cycle error: failed to check fees: %v", err)
		return
	}

	if feeCheck.Should {
		b.logger.Printf("Collecting %.4f SOL in fees...", feeCheck.Claimable)
		collectResult := b.collector.Collect(ctx)
		if collectResult.Success {
			b.state.LastFeeCollectionTime = time.Now()
			b.state.TotalFeesCollected += collectResult.TotalClaimed
			b.logger.Printf("Collected %.4f SOL ($%.2f)", collectResult.TotalClaimed, collectResult.TotalClaimedUsd)
			if b.notifier != nil && len(collectResult.Transactions) > 0 {
				b.notifier.SendFeesCollectedNotification(
					collectResult.TotalClaimed,
					collectResult.TotalClaimedUsd,
					len(collectResult.Transactions),
				)
			}
		} else {
			b.logger.Printf("Fee collection failed: %s", strings.Join(collectResult.Errors, "; "))
		}
	} else {
		b.logger.Printf("Claimable: %.4f SOL (threshold: %v SOL)", feeCheck.Claimable, feeCheck.Threshold)
	}

	// Step 2: fresh status and balance reads, then the buyback gate
	var (
		status  *feecollector.FeeStatus
		balance float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		status, err = b.collector.GetStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		balance, err = b.wallet.Balance(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		b.logger.Printf("Cycle error: failed to refresh market state: %v", err)
		return
	}

	availableSol := balance - buyback.FeeReserveSol
	check := b.executor.ShouldExecute(availableSol, b.state.LastBuybackTime)
	if !check.Should {
		// Gate rejected: end the cycle before spending an advisor call
		b.logger.Println(check.Reason)
		return
	}

	// Step 3: quote is best effort, the advisor can reason without one
	quote, err := b.executor.Quote(ctx, check.SuggestedAmount)
	if err != nil {
		b.logger.Printf("Could not get quote: %v", err)
		quote = nil
	}

	// Step 4: consult the advisor
	b.logger.Println("Consulting AI advisor...")
	advice := b.advisor.GetBuybackAdvice(ctx, &advisor.MarketContext{
		FeeStatus:       status,
		BuybackQuote:    quote,
		WalletBalance:   balance,
		LastBuybackTime: b.state.LastBuybackTime,
		RecentBuybacks:  b.state.RecentBuybacks,
	})

	b.logger.Printf("AI decision: shouldBuyback=%v, confidence=%.0f%%", advice.ShouldBuyback, advice.Confidence)
	b.logger.Printf("Reasoning: %s", advice.Reasoning)
	for _, warning := range advice.Warnings {
		b.logger.Printf("Warning: %s", warning)
	}

	if !advice.ShouldBuyback {
		b.logger.Println("AI recommends waiting")
		return
	}

	// Step 5: execute, preferring the advisor's sizing over the gate's
	amount := advice.SuggestedAmount
	if amount <= 0 {
		amount = check.SuggestedAmount
	}

	b.logger.Printf("Executing buyback of %.4f SOL...", amount)
	result := b.executor.Execute(ctx, amount)
	if !result.Success {
		b.logger.Printf("Buyback failed: %s", result.Error)
		return
	}

	now := time.Now()
	b.state.LastBuybackTime = now
	b.state.TotalBuybacks++
	b.state.RecentBuybacks = append(b.state.RecentBuybacks, advisor.BuybackRecord{
		Amount:      result.InputAmount,
		Timestamp:   now,
		PriceImpact: result.PriceImpact,
	})
	if len(b.state.RecentBuybacks) > maxRecentBuybacks {
		b.state.RecentBuybacks = b.state.RecentBuybacks[len(b.state.RecentBuybacks)-maxRecentBuybacks:]
	}

	b.logger.Printf("Buyback successful! Spent %.4f SOL for %.2f tokens (tx: %s)",
		result.InputAmount, result.OutputAmount, result.Transaction)

	if b.notifier != nil {
		b.notifier.SendBuybackNotification(
			result.InputAmount,
			result.OutputAmount,
			result.PriceImpact,
			result.Transaction,
		)
	}
}
