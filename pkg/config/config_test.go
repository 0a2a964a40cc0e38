package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		BagsAPIKey:        "key",
		TokenMint:         "mint",
		WalletPrivateKey:  "private",
		AnthropicAPIKey:   "anthropic",
		BuybackPercentage: 50,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	// Every missing required key is named in the error
	err := (&Config{BuybackPercentage: 50}).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BAGS_API_KEY")
	assert.Contains(t, err.Error(), "TOKEN_MINT")
	assert.Contains(t, err.Error(), "WALLET_PRIVATE_KEY")
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	cfg := validConfig()
	cfg.BuybackPercentage = 101
	assert.Error(t, cfg.Validate())

	cfg.BuybackPercentage = -1
	assert.Error(t, cfg.Validate())

	cfg.BuybackPercentage = 100
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "https://public-api-v2.bags.fm/api/v1", cfg.BagsAPIURL)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.SolanaRpcURL)
	assert.Equal(t, 0.1, cfg.BuybackThresholdSol)
	assert.Equal(t, 50, cfg.BuybackPercentage)
	assert.Equal(t, 24*time.Hour, cfg.MinBuybackInterval)
	assert.Equal(t, 100, cfg.SlippageBps)
	assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
	assert.False(t, cfg.EnableTelegram)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BUYBACK_THRESHOLD_SOL", "0.25")
	t.Setenv("BUYBACK_PERCENTAGE", "75")
	t.Setenv("MIN_BUYBACK_INTERVAL_HOURS", "6")
	t.Setenv("CHECK_INTERVAL", "30s")
	t.Setenv("ENABLE_TELEGRAM", "true")

	cfg := Load()

	assert.Equal(t, 0.25, cfg.BuybackThresholdSol)
	assert.Equal(t, 75, cfg.BuybackPercentage)
	assert.Equal(t, 6*time.Hour, cfg.MinBuybackInterval)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.True(t, cfg.EnableTelegram)
}

func TestEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("BUYBACK_THRESHOLD_SOL", "abc")
	t.Setenv("BUYBACK_PERCENTAGE", "half")
	t.Setenv("CHECK_INTERVAL", "soon")

	cfg := Load()

	// Unparseable values fall back to defaults
	assert.Equal(t, 0.1, cfg.BuybackThresholdSol)
	assert.Equal(t, 50, cfg.BuybackPercentage)
	assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
}
