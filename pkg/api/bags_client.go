package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/models"
)

// BagsClient handles API communication with the Bags.fm public API
type BagsClient struct {
	config     *config.Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewBagsClient creates a new Bags API client
func NewBagsClient(cfg *config.Config, logger *log.Logger) *BagsClient {
	return &BagsClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// GetClaimablePositions fetches claimable fee positions for a wallet
func (c *BagsClient) GetClaimablePositions(ctx context.Context, wallet string) ([]models.ClaimablePosition, error) {
	endpoint := "/fee-claiming/positions?wallet=" + url.QueryEscape(wallet)

	var positions []models.ClaimablePosition
	if err := c.get(ctx, endpoint, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// GetClaimTransactions requests pre-built claim transactions for the given
// pool config keys
func (c *BagsClient) GetClaimTransactions(ctx context.Context, wallet string, poolConfigKeys []string) ([]models.ClaimTransaction, error) {
	body := map[string]interface{}{
		"wallet":         wallet,
		"poolConfigKeys": poolConfigKeys,
	}

	var txs []models.ClaimTransaction
	if err := c.post(ctx, "/fee-claiming/transactions", body, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetFeeShareWallets fetches fee share wallet info for a token
func (c *BagsClient) GetFeeShareWallets(ctx context.Context, tokenMint string) ([]models.FeeShareWallet, error) {
	endpoint := "/fee-share/wallet-v2?tokenMint=" + url.QueryEscape(tokenMint)

	var wallets []models.FeeShareWallet
	if err := c.get(ctx, endpoint, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// GetTokenLifetimeFees fetches lifetime fee totals for a token
func (c *BagsClient) GetTokenLifetimeFees(ctx context.Context, tokenMint string) (*models.TokenLifetimeFees, error) {
	endpoint := "/analytics/token-lifetime-fees?tokenMint=" + url.QueryEscape(tokenMint)

	var fees models.TokenLifetimeFees
	if err := c.get(ctx, endpoint, &fees); err != nil {
		return nil, err
	}
	return &fees, nil
}

// GetTokenClaimStats fetches per-holder claim statistics for a token
func (c *BagsClient) GetTokenClaimStats(ctx context.Context, tokenMint string) ([]models.TokenClaimStats, error) {
	endpoint := "/token-launch/claim-stats?tokenMint=" + url.QueryEscape(tokenMint)

	var stats []models.TokenClaimStats
	if err := c.get(ctx, endpoint, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetTradeQuote fetches a swap quote. Amount is in base units of the input mint.
func (c *BagsClient) GetTradeQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*models.TradeQuote, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("slippageBps", strconv.Itoa(slippageBps))

	var quote models.TradeQuote
	if err := c.get(ctx, "/trade/quote?"+params.Encode(), &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateSwapTransaction requests a pre-built swap transaction for the given
// amount. Returns the serialized transaction payload.
func (c *BagsClient) CreateSwapTransaction(ctx context.Context, wallet, inputMint, outputMint string, amount uint64, slippageBps int) (string, error) {
	body := map[string]interface{}{
		"wallet":      wallet,
		"inputMint":   inputMint,
		"outputMint":  outputMint,
		"amount":      strconv.FormatUint(amount, 10),
		"slippageBps": slippageBps,
	}

	var tx string
	if err := c.post(ctx, "/trade/swap", body, &tx); err != nil {
		return "", err
	}
	return tx, nil
}

func (c *BagsClient) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.doRequest(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *BagsClient) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error encoding request: %w", err)
	}
	return c.doRequest(ctx, http.MethodPost, endpoint, jsonData, out)
}

// doRequest executes an HTTP request and unwraps the Bags API envelope
func (c *BagsClient) doRequest(ctx context.Context, method, endpoint string, jsonData []byte, out interface{}) error {
	var reqBody io.Reader
	if jsonData != nil {
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BagsAPIURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.BagsAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error executing request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	var envelope models.APIEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, string(bodyBytes))
		}
		return fmt.Errorf("error decoding response: %w", err)
	}

	if !envelope.Success {
		if envelope.Error != "" {
			return fmt.Errorf("bags API error: %s", envelope.Error)
		}
		return fmt.Errorf("bags API request failed with status %d", resp.StatusCode)
	}

	if out != nil && len(envelope.Response) > 0 {
		if err := json.Unmarshal(envelope.Response, out); err != nil {
			return fmt.Errorf("error decoding response payload: %w", err)
		}
	}

	return nil
}
