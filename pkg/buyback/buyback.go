package buyback

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/models"
	"bags-buyback-bot/pkg/solana"
)

// WrappedSolMint is the native SOL mint (wrapped) on mainnet
const WrappedSolMint = "So11111111111111111111111111111111111111112"

// FeeReserveSol is kept in the wallet so it can always pay network fees for
// its own transactions
const FeeReserveSol = 0.01

// TradeAPI is the slice of the Bags API the executor depends on
type TradeAPI interface {
	GetTradeQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*models.TradeQuote, error)
	CreateSwapTransaction(ctx context.Context, wallet, inputMint, outputMint string, amount uint64, slippageBps int) (string, error)
}

// ChainClient reads balance and submits transactions for the bot wallet
type ChainClient interface {
	Address() string
	Balance(ctx context.Context) (float64, error)
	SignAndSend(ctx context.Context, serializedTx string) (string, error)
}

// Quote is a fresh price quote for one buyback decision; never cached
type Quote struct {
	InputAmountSol     float64
	OutputAmountTokens float64
	PriceImpact        string // percentage
	EffectivePrice     float64
}

// Check is the result of the buyback gate
type Check struct {
	Should          bool
	Reason          string
	SuggestedAmount float64
}

// Result is the terminal record of one buyback attempt
type Result struct {
	Success      bool
	InputAmount  float64
	OutputAmount float64
	PriceImpact  string
	Transaction  string
	Error        string
}

// Executor decides whether buyback conditions are met and drives swap
// execution
type Executor struct {
	api         TradeAPI
	wallet      ChainClient
	tokenMint   string
	threshold   float64
	percentage  int
	minInterval time.Duration
	slippageBps int
	logger      *log.Logger
}

// NewExecutor creates a new buyback executor
func NewExecutor(api TradeAPI, wallet ChainClient, cfg *config.Config, logger *log.Logger) *Executor {
	return &Executor{
		api:         api,
		wallet:      wallet,
		tokenMint:   cfg.TokenMint,
		threshold:   cfg.BuybackThresholdSol,
		percentage:  cfg.BuybackPercentage,
		minInterval: cfg.MinBuybackInterval,
		slippageBps: cfg.SlippageBps,
		logger:      logger,
	}
}

// Quote fetches a fresh quote for swapping amountSol of SOL into the
// configured token
func (e *Executor) Quote(ctx context.Context, amountSol float64) (*Quote, error) {
	lamports := solana.SolToLamports(amountSol)

	quote, err := e.api.GetTradeQuote(ctx, WrappedSolMint, e.tokenMint, lamports, e.slippageBps)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade quote: %w", err)
	}

	outputTokens, err := decimal.NewFromString(quote.OutputAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid quote output amount %q: %w", quote.OutputAmount, err)
	}
	if outputTokens.IsZero() {
		return nil, fmt.Errorf("quote returned zero output for %s -> %s", WrappedSolMint, e.tokenMint)
	}

	out := outputTokens.InexactFloat64()
	return &Quote{
		InputAmountSol:     amountSol,
		OutputAmountTokens: out,
		PriceImpact:        quote.PriceImpact,
		EffectivePrice:     amountSol / out,
	}, nil
}

// ShouldExecute applies the two buyback gates: enough funds, and enough time
// since the last buyback. Both must pass. lastBuyback is the zero time when
// no buyback has happened yet.
func (e *Executor) ShouldExecute(availableSol float64, lastBuyback time.Time) Check {
	if availableSol < e.threshold {
		return Check{
			Should: false,
			Reason: fmt.Sprintf("Insufficient funds. Have: %.4f SOL, Need: %v SOL",
				availableSol, e.threshold),
		}
	}

	if !lastBuyback.IsZero() {
		elapsed := time.Since(lastBuyback)
		if elapsed < e.minInterval {
			hoursRemaining := (e.minInterval - elapsed).Hours()
			return Check{
				Should: false,
				Reason: fmt.Sprintf("Too soon since last buyback. Wait %.1f more hours", hoursRemaining),
			}
		}
	}

	return Check{
		Should:          true,
		Reason:          "All conditions met for buyback",
		SuggestedAmount: e.CalculateAmount(availableSol),
	}
}

// CalculateAmount sizes a buyback as the configured percentage of the
// available balance
func (e *Executor) CalculateAmount(availableSol float64) float64 {
	return availableSol * float64(e.percentage) / 100
}

// Execute performs a buyback of amountSol. Every failure is captured in the
// result; Execute never panics or returns an error out of band.
func (e *Executor) Execute(ctx context.Context, amountSol float64) *Result {
	result := &Result{
		InputAmount: amountSol,
		PriceImpact: "0",
	}

	balance, err := e.wallet.Balance(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to check balance: %v", err)
		return result
	}

	required := amountSol + FeeReserveSol
	if balance < required {
		result.Error = fmt.Sprintf("Insufficient balance. Have: %.4f SOL, Need: %v SOL", balance, required)
		return result
	}

	e.logger.Printf("Getting buyback quote for %.4f SOL...", amountSol)
	quote, err := e.Quote(ctx, amountSol)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.OutputAmount = quote.OutputAmountTokens
	result.PriceImpact = quote.PriceImpact

	e.logger.Printf("Quote: %.4f SOL -> %.2f tokens (%s%% impact)",
		amountSol, quote.OutputAmountTokens, quote.PriceImpact)

	e.logger.Println("Creating swap transaction...")
	serializedTx, err := e.api.CreateSwapTransaction(
		ctx,
		e.wallet.Address(),
		WrappedSolMint,
		e.tokenMint,
		solana.SolToLamports(amountSol),
		e.slippageBps,
	)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create swap transaction: %v", err)
		return result
	}

	e.logger.Println("Signing and sending transaction...")
	signature, err := e.wallet.SignAndSend(ctx, serializedTx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to submit swap: %v", err)
		return result
	}

	result.Transaction = signature
	result.Success = true
	e.logger.Printf("Buyback successful: %s", signature)

	return result
}
