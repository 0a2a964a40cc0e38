package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"bags-buyback-bot/pkg/buyback"
	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/feecollector"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-sonnet-4-20250514"
	maxTokens        = 1024
)

// BuybackRecord is one remembered buyback, fed back to the advisor as context
type BuybackRecord struct {
	Amount      float64
	Timestamp   time.Time
	PriceImpact string
}

// MarketContext is the read-only snapshot the advisor reasons over
type MarketContext struct {
	FeeStatus       *feecollector.FeeStatus
	BuybackQuote    *buyback.Quote
	WalletBalance   float64
	LastBuybackTime time.Time
	RecentBuybacks  []BuybackRecord
}

// BuybackAdvice is the advisor's structured recommendation. It is one gating
// input for the orchestrator, never binding on its own.
type BuybackAdvice struct {
	ShouldBuyback   bool     `json:"shouldBuyback"`
	Confidence      float64  `json:"confidence"` // 0-100
	SuggestedAmount float64  `json:"suggestedAmount"`
	Reasoning       string   `json:"reasoning"`
	Warnings        []string `json:"warnings"`
}

// Client calls the Anthropic messages API for buyback advice
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string

	threshold   float64
	percentage  int
	minInterval time.Duration

	logger *log.Logger
}

// NewClient creates a new advisory client
func NewClient(cfg *config.Config, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		apiKey:      cfg.AnthropicAPIKey,
		model:       defaultModel,
		baseURL:     anthropicURL,
		threshold:   cfg.BuybackThresholdSol,
		percentage:  cfg.BuybackPercentage,
		minInterval: cfg.MinBuybackInterval,
		logger:      logger,
	}
}

// GetBuybackAdvice asks the model for a go/no-go recommendation. Any failure
// (transport, schema, out-of-range values) degrades to a conservative
// default rather than propagating.
func (c *Client) GetBuybackAdvice(ctx context.Context, mc *MarketContext) *BuybackAdvice {
	text, err := c.call(ctx, c.buildAdvicePrompt(mc))
	if err != nil {
		c.logger.Printf("Error getting buyback advice: %v", err)
		return conservativeDefault()
	}

	advice, err := parseAdvice(text)
	if err != nil {
		c.logger.Printf("Invalid advice from model: %v", err)
		return conservativeDefault()
	}

	return advice
}

// GetStrategyAdvice asks the model for a free-text strategy narrative
func (c *Client) GetStrategyAdvice(ctx context.Context, mc *MarketContext) string {
	text, err := c.call(ctx, c.buildStrategyPrompt(mc))
	if err != nil {
		c.logger.Printf("Error getting strategy advice: %v", err)
		return "Unable to generate strategy analysis at this time."
	}
	return strings.TrimSpace(text)
}

func conservativeDefault() *BuybackAdvice {
	return &BuybackAdvice{
		ShouldBuyback:   false,
		Confidence:      0,
		SuggestedAmount: 0,
		Reasoning:       "Unable to get AI advice, defaulting to no action",
		Warnings:        []string{"AI advisor unavailable"},
	}
}

// parseAdvice decodes and validates the model's JSON. Models occasionally
// wrap the JSON in code fences despite instructions, so decoding starts at
// the outermost braces.
func parseAdvice(text string) (*BuybackAdvice, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var advice BuybackAdvice
	if err := json.Unmarshal([]byte(text[start:end+1]), &advice); err != nil {
		return nil, fmt.Errorf("failed to decode advice: %w", err)
	}

	if advice.Confidence < 0 || advice.Confidence > 100 {
		return nil, fmt.Errorf("confidence %v out of range", advice.Confidence)
	}
	if advice.SuggestedAmount < 0 {
		return nil, fmt.Errorf("negative suggested amount %v", advice.SuggestedAmount)
	}

	return &advice, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	for _, content := range result.Content {
		if content.Type == "text" {
			return content.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from anthropic")
}
