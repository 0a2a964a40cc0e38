package feecollector

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/models"
	"bags-buyback-bot/pkg/solana"
)

// FeeAPI is the slice of the Bags API the collector depends on
type FeeAPI interface {
	GetClaimablePositions(ctx context.Context, wallet string) ([]models.ClaimablePosition, error)
	GetClaimTransactions(ctx context.Context, wallet string, poolConfigKeys []string) ([]models.ClaimTransaction, error)
	GetTokenLifetimeFees(ctx context.Context, tokenMint string) (*models.TokenLifetimeFees, error)
	GetTokenClaimStats(ctx context.Context, tokenMint string) ([]models.TokenClaimStats, error)
}

// TxSubmitter signs and submits pre-built transactions
type TxSubmitter interface {
	Address() string
	SignAndSend(ctx context.Context, serializedTx string) (string, error)
}

// FeeSharer is one royalty recipient of the token's fees
type FeeSharer struct {
	Username     string
	RoyaltyBps   int
	TotalClaimed string
}

// FeeStatus is the aggregate fee view for the configured token
type FeeStatus struct {
	TokenMint                string
	LifetimeFeesCollected    float64
	LifetimeFeesCollectedUsd float64
	ClaimablePositions       []models.ClaimablePosition
	TotalClaimable           float64 // SOL
	TotalClaimableUsd        float64
	FeeSharers               []FeeSharer
}

// CollectCheck is the result of the collection gate
type CollectCheck struct {
	Should    bool
	Claimable float64
	Threshold float64
}

// CollectionResult records the outcome of one collection run. Success stays
// true when nothing was claimable; it flips to false only when errors
// occurred and no transaction landed.
type CollectionResult struct {
	Success         bool
	TotalClaimed    float64
	TotalClaimedUsd float64
	Transactions    []string
	Errors          []string
}

// Collector decides when accrued fees warrant collection and drives the
// claim submissions
type Collector struct {
	api       FeeAPI
	wallet    TxSubmitter
	tokenMint string
	threshold float64
	logger    *log.Logger
}

// NewCollector creates a new fee collector
func NewCollector(api FeeAPI, wallet TxSubmitter, cfg *config.Config, logger *log.Logger) *Collector {
	return &Collector{
		api:       api,
		wallet:    wallet,
		tokenMint: cfg.TokenMint,
		threshold: cfg.BuybackThresholdSol,
		logger:    logger,
	}
}

// GetStatus fetches lifetime fees, claimable positions and claim stats in
// parallel and aggregates them for the configured token. Any fetch failure
// fails the whole status: decisions are never made on partial data.
func (c *Collector) GetStatus(ctx context.Context) (*FeeStatus, error) {
	var (
		lifetimeFees *models.TokenLifetimeFees
		positions    []models.ClaimablePosition
		claimStats   []models.TokenClaimStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lifetimeFees, err = c.api.GetTokenLifetimeFees(gctx, c.tokenMint)
		return err
	})
	g.Go(func() error {
		var err error
		positions, err = c.api.GetClaimablePositions(gctx, c.wallet.Address())
		return err
	})
	g.Go(func() error {
		var err error
		claimStats, err = c.api.GetTokenClaimStats(gctx, c.tokenMint)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch fee status: %w", err)
	}

	tokenPositions := c.filterPositions(positions)

	totalLamports := decimal.Zero
	totalUsd := decimal.Zero
	for _, p := range tokenPositions {
		amount, err := decimal.NewFromString(p.ClaimableAmount)
		if err != nil {
			c.logger.Printf("Skipping position %s with bad claimable amount %q: %v",
				p.PoolConfigKey, p.ClaimableAmount, err)
			continue
		}
		totalLamports = totalLamports.Add(amount)

		if usd, err := decimal.NewFromString(p.ClaimableAmountUsd); err == nil {
			totalUsd = totalUsd.Add(usd)
		}
	}

	status := &FeeStatus{
		TokenMint:          c.tokenMint,
		ClaimablePositions: tokenPositions,
		TotalClaimable:     totalLamports.Shift(-9).InexactFloat64(),
		TotalClaimableUsd:  totalUsd.InexactFloat64(),
	}

	if lifetime, err := decimal.NewFromString(lifetimeFees.TotalFeesCollected); err == nil {
		status.LifetimeFeesCollected = lifetime.InexactFloat64()
	}
	if lifetimeUsd, err := decimal.NewFromString(lifetimeFees.TotalFeesCollectedUsd); err == nil {
		status.LifetimeFeesCollectedUsd = lifetimeUsd.InexactFloat64()
	}

	for _, s := range claimStats {
		username := s.ProviderUsername
		if username == "" {
			username = s.Username
		}
		status.FeeSharers = append(status.FeeSharers, FeeSharer{
			Username:     username,
			RoyaltyBps:   s.RoyaltyBps,
			TotalClaimed: s.TotalClaimed,
		})
	}

	return status, nil
}

// ShouldCollect reports whether claimable fees meet the configured
// threshold. The boundary is inclusive: exactly at the threshold collects.
func (c *Collector) ShouldCollect(ctx context.Context) (*CollectCheck, error) {
	status, err := c.GetStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &CollectCheck{
		Should:    status.TotalClaimable >= c.threshold,
		Claimable: status.TotalClaimable,
		Threshold: c.threshold,
	}, nil
}

// Collect claims all claimable positions for the configured token. Positions
// are re-fetched here rather than reused from GetStatus so the claim set is
// as fresh as possible. Claim transactions are submitted one at a time: a
// failed submission is recorded and the rest continue.
func (c *Collector) Collect(ctx context.Context) *CollectionResult {
	result := &CollectionResult{Success: true}
	wallet := c.wallet.Address()

	c.logger.Println("Fetching claimable positions...")
	positions, err := c.api.GetClaimablePositions(ctx, wallet)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	tokenPositions := c.filterPositions(positions)
	if len(tokenPositions) == 0 {
		c.logger.Println("No claimable positions for configured token")
		return result
	}

	c.logger.Printf("Found %d claimable position(s)", len(tokenPositions))

	poolConfigKeys := make([]string, 0, len(tokenPositions))
	byPoolConfig := make(map[string]models.ClaimablePosition, len(tokenPositions))
	for _, p := range tokenPositions {
		poolConfigKeys = append(poolConfigKeys, p.PoolConfigKey)
		byPoolConfig[p.PoolConfigKey] = p
	}

	c.logger.Println("Generating claim transactions...")
	claimTxs, err := c.api.GetClaimTransactions(ctx, wallet, poolConfigKeys)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Sequential on purpose: claims share one fee payer and must not race
	for _, claimTx := range claimTxs {
		signature, err := c.wallet.SignAndSend(ctx, claimTx.Transaction)
		if err != nil {
			c.logger.Printf("Claim failed: %v", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		c.logger.Printf("Claim successful: %s", signature)
		result.Transactions = append(result.Transactions, signature)

		if position, ok := byPoolConfig[claimTx.PoolConfigKey]; ok {
			if sol, err := solana.LamportsStringToSol(position.ClaimableAmount); err == nil {
				result.TotalClaimed += sol
			}
			if usd, err := decimal.NewFromString(position.ClaimableAmountUsd); err == nil {
				result.TotalClaimedUsd += usd.InexactFloat64()
			}
		}
	}

	if len(result.Errors) > 0 {
		result.Success = len(result.Transactions) > 0
	}

	return result
}

func (c *Collector) filterPositions(positions []models.ClaimablePosition) []models.ClaimablePosition {
	filtered := make([]models.ClaimablePosition, 0, len(positions))
	for _, p := range positions {
		if p.TokenMint == c.tokenMint {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
