package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Bags.fm
	BagsAPIKey string
	BagsAPIURL string
	TokenMint  string

	// Solana
	WalletPrivateKey string
	SolanaRpcURL     string

	// Claude AI
	AnthropicAPIKey string

	// Telegram
	TelegramBotToken string
	TelegramChatID   string
	EnableTelegram   bool

	// Buyback strategy
	BuybackThresholdSol float64
	BuybackPercentage   int
	MinBuybackInterval  time.Duration
	SlippageBps         int

	// Bot loop
	CheckInterval time.Duration
}

// Load builds a configuration from environment variables, reading a .env
// file first when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BagsAPIKey: getEnv("BAGS_API_KEY", ""),
		BagsAPIURL: getEnv("BAGS_API_URL", "https://public-api-v2.bags.fm/api/v1"),
		TokenMint:  getEnv("TOKEN_MINT", ""),

		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),
		SolanaRpcURL:     getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		EnableTelegram:   getEnvBool("ENABLE_TELEGRAM", false),

		BuybackThresholdSol: getEnvFloat("BUYBACK_THRESHOLD_SOL", 0.1),
		BuybackPercentage:   getEnvInt("BUYBACK_PERCENTAGE", 50),
		MinBuybackInterval:  time.Duration(getEnvInt("MIN_BUYBACK_INTERVAL_HOURS", 24)) * time.Hour,
		SlippageBps:         getEnvInt("SLIPPAGE_BPS", 100),

		CheckInterval: parseEnvDuration("CHECK_INTERVAL", 5*time.Minute),
	}
}

// Validate checks that all required configuration is present. An error here
// is fatal: the bot must not start with missing credentials.
func (c *Config) Validate() error {
	var missing []string

	if c.BagsAPIKey == "" {
		missing = append(missing, "BAGS_API_KEY")
	}
	if c.TokenMint == "" {
		missing = append(missing, "TOKEN_MINT")
	}
	if c.WalletPrivateKey == "" {
		missing = append(missing, "WALLET_PRIVATE_KEY")
	}
	if c.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if c.BuybackPercentage < 0 || c.BuybackPercentage > 100 {
		return fmt.Errorf("BUYBACK_PERCENTAGE must be between 0 and 100, got %d", c.BuybackPercentage)
	}

	return nil
}

// Helper functions for working with environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func parseEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
